// Burger Master Pro CLI - offline blend calculator
//
// Usage:
//
//	blendcalc calc --recipe blend.yaml --units 40 --price "Peito Limpo=42,90"
//	blendcalc list --units 40
//	blendcalc sheet --recipe blend.json
//	blendcalc sizes
//	blendcalc catalog --query smash
//	blendcalc catalog --categories
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "blendcalc",
		Usage:   "Burger blend calculator - weights, costs and production sheets",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"BURGERMASTER_LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			calcCommand(),
			listCommand(),
			sheetCommand(),
			sizesCommand(),
			catalogCommand(),
		},
	}
}
