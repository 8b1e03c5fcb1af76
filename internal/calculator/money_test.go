package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.004", "1.00"},
		{"1.005", "1.01"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"33.333333", "33.33"},
		{"100", "100.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundMoney(d(tt.in)).StringFixed(2))
		})
	}
}
