package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitpool/internal/models"
)

func TestSuggest(t *testing.T) {
	rules := []models.CategoryRule{
		{ID: "1", Pattern: "uber|lyft", Category: "Transportation"},
		{ID: "2", Pattern: "([unclosed", Category: "Broken"},
		{ID: "3", Pattern: "^grocer", Category: "Groceries"},
		{ID: "4", Pattern: "airport", Category: "Travel"},
	}

	tests := []struct {
		name    string
		expense string
		want    string
		wantOK  bool
	}{
		{"first matching rule wins", "Uber to airport", "Transportation", true},
		{"case insensitive", "LYFT home", "Transportation", true},
		{"invalid pattern is skipped", "Grocery run", "Groceries", true},
		{"anchored pattern does not match mid-string", "Weekly grocery run", "", false},
		{"no match", "Concert tickets", "", false},
		{"empty name", "", "", false},
		{"blank name", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Suggest(tt.expense, rules)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggest_NoRules(t *testing.T) {
	got, ok := Suggest("Grocery run", nil)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestSuggest_SingleRule(t *testing.T) {
	rules := []models.CategoryRule{{Pattern: "uber|lyft", Category: "Transportation"}}

	got, ok := Suggest("Uber to airport", rules)
	assert.True(t, ok)
	assert.Equal(t, "Transportation", got)

	_, ok = Suggest("Grocery run", rules)
	assert.False(t, ok)
}
