package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanCompanyName(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":                     "Acme Corp",
		"Acme Corp. The best widgets":   "Acme Corp",
		"Panadería Sol: pan artesano":   "Panadería Sol",
		"La Tienda - ropa y accesorios": "Tienda",
		"The Coffee House":              "Coffee House",
		"l'Atelier":                     "Atelier",
		"  Re-Store  ":                  "Re-Store",
	}
	for in, want := range cases {
		require.Equal(t, want, CleanCompanyName(in), in)
	}
}

func TestParseExtractionJSON(t *testing.T) {
	name, activity := ParseExtraction("```json\n{\"companyName\":\"The Acme Company. Widgets\",\"activity\":\"  Makes widgets. \"}\n```")
	require.Equal(t, "Acme Company", name)
	require.Equal(t, "Makes widgets.", activity)
}

func TestParseExtractionFallback(t *testing.T) {
	text := "**Company name:** Panadería Sol\n\n2. Brief company description: Artisan bakery.\nFamily owned."
	name, activity := ParseExtraction(text)
	require.Equal(t, "Panadería Sol", name)
	require.Equal(t, "Artisan bakery. Family owned.", activity)

	name, activity = ParseExtraction("   \n ")
	require.Empty(t, name)
	require.Empty(t, activity)
}
