package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericTokens(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains []string
	}{
		{"percent", "Spot freight fell 15% week over week", []string{"15%"}},
		{"percent word", "Capacity is down 3.5 percent", []string{"3.5 percent"}},
		{"currency", "The contract is worth $1,200 million", []string{"$1200 million"}},
		{"currency code", "Penalties reach EUR 40 bn", []string{"eur 40 bn"}},
		{"quarter", "Deliveries slip to Q3 2025", []string{"q3 2025"}},
		{"units", "Output hit 12 mbpd and 450 MW of new capacity", []string{"12 mbpd", "450 mw"}},
		{"longest unit wins", "Prices settled at 85 MWh", []string{"85 mwh"}},
		{"bare number", "Around 1,500 trucks idled", []string{"1500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NumericTokens(tt.text)
			for _, want := range tt.contains {
				assert.Contains(t, tokens, want)
			}
		})
	}
}

func TestNumericTokens_NoFalsePositives(t *testing.T) {
	texts := []string{
		"Suppliers remain cautious about the outlook",
		"A lot of mt. climbers are in the news", // "mt" only counts after a magnitude
		"Version 2 of the plan was approved",    // single digit without unit
	}
	for _, text := range texts {
		assert.Empty(t, NumericTokens(text), text)
		assert.False(t, HasNumeric(text))
	}
}

func TestNumericTokens_SortedAndDeduplicated(t *testing.T) {
	tokens := NumericTokens("Up 15% then up 15% again, 2024 and 2024")
	assert.Equal(t, []string{"15%", "2024"}, tokens)
}

func TestNormalizeNumeric(t *testing.T) {
	assert.Equal(t, "$1200 million", NormalizeNumeric(" $1,200   Million "))
}
