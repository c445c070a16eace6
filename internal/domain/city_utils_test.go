package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Amsterdam", "amsterdam", true},
		{"  Utrecht ", "UTRECHT", true},
		{"Den Haag", "den haag", true},
		{"Groningen", "Rotterdam", false},
		{"", "", false},
		{"Amsterdam", "", false},
		{"   ", "   ", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LocationsMatch(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
