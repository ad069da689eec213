package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/burgermaster/blendcalc/internal/application/calculator"
	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/infrastructure/catalog"
	"github.com/burgermaster/blendcalc/pkg/logger"
)

func stateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "recipe",
			Aliases: []string{"r"},
			Usage:   "Recipe file (JSON or YAML); the default blend when empty",
		},
		&cli.IntFlag{
			Name:    "units",
			Aliases: []string{"u"},
			Value:   calculator.DefaultUnits,
			Usage:   "Number of patties to produce",
		},
		&cli.StringSliceFlag{
			Name:    "price",
			Aliases: []string{"p"},
			Usage:   "Price per kg as Name=value, repeatable (comma decimals accepted)",
		},
		&cli.Float64Flag{
			Name:  "selling-price",
			Value: calculator.DefaultSellingPrice,
			Usage: "Selling price of one burger",
		},
	}
}

func calcCommand() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Calculate ingredient weights and costs for a batch",
		Flags: append(stateFlags(),
			&cli.StringFlag{
				Name:  "format",
				Value: "table",
				Usage: "Output format (table, json)",
			},
		),
		Action: func(c *cli.Context) error {
			state, err := stateFromFlags(c)
			if err != nil {
				return err
			}
			report := calculator.BuildReport(state)

			switch c.String("format") {
			case "json":
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "table":
				return writeReportTable(c.App.Writer, state, report.Result, report.Costs, report.RatioDrift)
			default:
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the shopping list for a batch",
		Flags: stateFlags(),
		Action: func(c *cli.Context) error {
			state, err := stateFromFlags(c)
			if err != nil {
				return err
			}
			report := calculator.BuildReport(state)
			_, err = fmt.Fprintln(c.App.Writer, calculator.RenderShoppingList(state.Recipe, report.Result, report.Costs))
			return err
		},
	}
}

func sheetCommand() *cli.Command {
	return &cli.Command{
		Name:  "sheet",
		Usage: "Print the Markdown production sheet for a batch",
		Flags: append(stateFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the sheet to a file instead of stdout",
			},
		),
		Action: func(c *cli.Context) error {
			state, err := stateFromFlags(c)
			if err != nil {
				return err
			}
			sheet := calculator.RenderProductionSheet(calculator.BuildReport(state), calculator.SheetOptions{
				ID:       calculator.NewSheetID(),
				IssuedAt: time.Now(),
			})

			if out := c.String("output"); out != "" {
				if err := os.WriteFile(out, []byte(sheet), 0o644); err != nil {
					return fmt.Errorf("failed to write production sheet: %w", err)
				}
				fmt.Fprintf(c.App.Writer, "Production sheet written to %s\n", out)
				return nil
			}
			_, err = fmt.Fprintln(c.App.Writer, sheet)
			return err
		},
	}
}

func sizesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sizes",
		Usage: "List the preset patty sizes",
		Action: func(c *cli.Context) error {
			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tWEIGHT\tDESCRIPTION")
			for _, s := range blend.BurgerSizes() {
				fmt.Fprintf(w, "%s\t%s\t%.0fg\t%s\n", s.ID, s.Label, s.Weight, s.Description)
			}
			return w.Flush()
		},
	}
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Search the offline blend catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Search text; the classic blends when empty",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Catalog YAML file; the embedded catalog when empty",
			},
			&cli.BoolFlag{
				Name:  "categories",
				Usage: "List the catalog categories instead of searching",
			},
		},
		Action: func(c *cli.Context) error {
			log, err := newLogger(c)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cat, err := loadCatalog(c.String("file"))
			if err != nil {
				return err
			}
			if c.Bool("categories") {
				for _, name := range cat.Categories() {
					fmt.Fprintln(c.App.Writer, name)
				}
				return nil
			}

			query := strings.TrimSpace(c.String("query"))
			if query == "" {
				query = blend.DefaultCategory
			}
			blends, err := cat.SearchBlends(c.Context, query)
			if err != nil {
				return err
			}
			log.Debug("Catalog searched",
				zap.String("query", query),
				zap.Int("results", len(blends)))

			if len(blends) == 0 {
				fmt.Fprintln(c.App.Writer, "No blends found")
				return nil
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFAT\tMEATS")
			for _, b := range blends {
				parts := make([]string, 0, len(b.Meats))
				for _, m := range b.Meats {
					parts = append(parts, fmt.Sprintf("%s %.0f%%", m.Name, m.Ratio*100))
				}
				fmt.Fprintf(w, "%s\t%.0f%%\t%s\n", b.Name, b.FatRatio*100, strings.Join(parts, ", "))
			}
			return w.Flush()
		},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       c.String("log-level"),
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// stateFromFlags assembles a calculator state from the shared flags.
func stateFromFlags(c *cli.Context) (calculator.AppState, error) {
	state := calculator.DefaultState()

	if path := c.String("recipe"); path != "" {
		recipe, err := loadRecipe(path)
		if err != nil {
			return state, err
		}
		state.Recipe = recipe
	}

	units := c.Int("units")
	if units < 0 {
		return state, fmt.Errorf("units must not be negative, got %d", units)
	}
	state.Units = units

	prices, err := parsePrices(state.Prices, c.StringSlice("price"))
	if err != nil {
		return state, err
	}
	state.Prices = prices
	state.SellingPrice = c.Float64("selling-price")
	return state, nil
}

// loadRecipe reads a recipe from a JSON or YAML file. YAML is detected by
// extension.
func loadRecipe(path string) (blend.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return blend.Recipe{}, fmt.Errorf("failed to read recipe: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return blend.Recipe{}, fmt.Errorf("failed to parse recipe YAML: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return blend.Recipe{}, fmt.Errorf("failed to convert recipe YAML: %w", err)
		}
	}

	var recipe blend.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return blend.Recipe{}, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := recipe.Validate(); err != nil {
		return blend.Recipe{}, fmt.Errorf("invalid recipe %s: %w", path, err)
	}
	return recipe, nil
}

// parsePrices overlays Name=value pairs on base. The value may use a
// comma as decimal separator; the last '=' separates name from value.
func parsePrices(base blend.PriceTable, pairs []string) (blend.PriceTable, error) {
	prices := base.Clone()
	for _, pair := range pairs {
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid price %q, expected Name=value", pair)
		}
		name := strings.TrimSpace(pair[:idx])
		if name == "" {
			return nil, fmt.Errorf("invalid price %q, expected Name=value", pair)
		}
		prices[name] = blend.ParsePrice(pair[idx+1:])
	}
	return prices, nil
}

func writeReportTable(out io.Writer, state calculator.AppState, result blend.CalculationResult, costs blend.CostBreakdown, drift float64) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%d x %.0fg\t%.0fg\n", state.Recipe.Name, result.Units, state.Recipe.UnitWeight, result.Total)
	fmt.Fprintln(w, "INGREDIENT\tSHARE\tWEIGHT\tCOST")
	fmt.Fprintf(w, "%s\t%.1f%%\t%.0fg\t%s\n", blend.FatPriceKey, state.Recipe.FatRatio*100, result.Fat, calculator.FormatBRL(costs.FatCost))
	for _, m := range result.Meats {
		cost := m.Weight / 1000 * state.Prices.Price(m.Name)
		fmt.Fprintf(w, "%s\t%.1f%%\t%.0fg\t%s\n", m.Name, m.RatioInTotal*100, m.Weight, calculator.FormatBRL(cost))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total cost\t%s\n", calculator.FormatBRL(costs.Total))
	fmt.Fprintf(w, "Cost per unit\t%s\n", calculator.FormatBRL(costs.PerUnit))
	fmt.Fprintf(w, "Selling price\t%s\n", calculator.FormatBRL(state.SellingPrice))
	fmt.Fprintf(w, "Profit per unit\t%s\n", calculator.FormatBRL(costs.Profit))
	fmt.Fprintf(w, "Margin\t%.1f%%\n", costs.Margin)
	if math.Abs(drift) > 0.0001 {
		fmt.Fprintf(w, "Warning\tmeat ratios deviate from 100%% by %.1f%%\n", drift*100)
	}
	return w.Flush()
}
