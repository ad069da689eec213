package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsAllCategories(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Clássicos", "Famosos (Brasil/Mundo)", "Smash", "Premium (Angus/Wagyu)", "Custo-Benefício",
	}, c.Categories())
}

func TestSearchBlends(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"exact category", "Clássicos", []string{"The ShackBlend (Shake Shack)", "Pat LaFrieda Original", "Clássico 50/50"}},
		{"accent and case insensitive", "classicos", []string{"The ShackBlend (Shake Shack)", "Pat LaFrieda Original", "Clássico 50/50"}},
		{"partial category", "premium", []string{"Wagyu Experience", "Picanha Blend"}},
		{"blend name", "madero", []string{"Madero Style"}},
		{"description", "oklahoma", []string{"Ultra Smash Onion"}},
		{"unknown", "Exóticos", []string{}},
		{"empty", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blends, err := c.SearchBlends(ctx, tt.query)
			require.NoError(t, err)

			names := []string{}
			for _, b := range blends {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearchBlends_ResultsAreCopies(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	first, _ := c.SearchBlends(context.Background(), "smash")
	first[0].Meats[0].Name = "changed"
	second, _ := c.SearchBlends(context.Background(), "smash")

	assert.Equal(t, "Acém", second[0].Meats[0].Name)
	assert.NotEmpty(t, second[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestParse_RejectsInvalidBlends(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  - name: Bad
    blends:
      - name: Too Fat
        fatRatio: 1.5
        meats: [{name: Acém, ratio: 1}]
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad/Too Fat")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blends.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: Casa
    blends:
      - name: Da Casa
        description: Blend da casa
        fatRatio: 0.2
        meats: [{name: Acém, ratio: 1}]
`), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	blends, err := c.SearchBlends(context.Background(), "casa")
	require.NoError(t, err)
	require.Len(t, blends, 1)
	assert.Equal(t, "Da Casa", blends[0].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
