package organization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Acme":                "acme",
		"Société Générale":    "societe-generale",
		"  Crème & Brûlée  ":  "creme-brulee",
		"L'Oréal Paris 2026!": "l-oreal-paris-2026",
		"***":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
