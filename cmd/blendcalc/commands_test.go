package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
)

func TestParsePrices(t *testing.T) {
	base := blend.DefaultPrices()

	prices, err := parsePrices(base, []string{"Peito Limpo=42,90", "Acém Limpo= 38.5 ", "Costela=abc"})
	require.NoError(t, err)

	assert.InDelta(t, 42.90, prices["Peito Limpo"], 1e-9)
	assert.InDelta(t, 38.5, prices["Acém Limpo"], 1e-9)
	assert.Zero(t, prices["Costela"])
	assert.InDelta(t, 15.0, prices[blend.FatPriceKey], 1e-9)
	assert.NotContains(t, base, "Peito Limpo", "base table must not be modified")
}

func TestParsePrices_LastEqualsSeparates(t *testing.T) {
	prices, err := parsePrices(blend.PriceTable{}, []string{"Blend A=B=12"})
	require.NoError(t, err)
	assert.InDelta(t, 12.0, prices["Blend A=B"], 1e-9)
}

func TestParsePrices_Invalid(t *testing.T) {
	for _, pair := range []string{"Peito", "=10", "  =10"} {
		_, err := parsePrices(blend.DefaultPrices(), []string{pair})
		assert.Error(t, err, pair)
	}
}

func TestLoadRecipe(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "smash.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
name: Smash da Casa
fatRatio: 0.2
unitWeight: 80
grindMethod: Moído 1x no disco fino
meats:
  - name: Acém Limpo
    ratio: 0.6
  - name: Peito Limpo
    ratio: 0.4
`), 0o644))

	recipe, err := loadRecipe(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Smash da Casa", recipe.Name)
	assert.InDelta(t, 0.2, recipe.FatRatio, 1e-9)
	assert.InDelta(t, 80.0, recipe.UnitWeight, 1e-9)
	require.Len(t, recipe.Meats, 2)
	assert.Equal(t, "Acém Limpo", recipe.Meats[0].Name)

	jsonPath := filepath.Join(dir, "blend.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"Json Blend","fatRatio":0.25,"unitWeight":150,"meats":[{"name":"Fraldinha","ratio":1}]}`), 0o644))

	recipe, err = loadRecipe(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "Json Blend", recipe.Name)
	assert.InDelta(t, 150.0, recipe.UnitWeight, 1e-9)
}

func TestLoadRecipe_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadRecipe(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"name":`), 0o644))
	_, err = loadRecipe(broken)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("name: Bad\nfatRatio: 1.5\nunitWeight: 100\nmeats: []\n"), 0o644))
	_, err = loadRecipe(invalid)
	assert.Error(t, err)
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	require.NoError(t, app.Run(append([]string{"blendcalc"}, args...)))
	return out.String()
}

func TestCatalogCommand_EmptyQueryListsClassics(t *testing.T) {
	out := runCLI(t, "catalog")

	assert.NotContains(t, out, "No blends found")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Pat LaFrieda Original")
}

func TestCatalogCommand_Query(t *testing.T) {
	out := runCLI(t, "catalog", "--query", "madero")
	assert.Contains(t, out, "Madero Style")

	out = runCLI(t, "catalog", "-q", "nothing-like-this")
	assert.Equal(t, "No blends found\n", out)
}

func TestCatalogCommand_Categories(t *testing.T) {
	out := runCLI(t, "catalog", "--categories")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "Clássicos", lines[0])
	assert.Contains(t, lines, "Famosos (Brasil/Mundo)")
	assert.NotContains(t, out, "NAME")
}
