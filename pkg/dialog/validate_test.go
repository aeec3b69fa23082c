package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) bool
		valid []string
		bad   []string
	}{
		{"age", validAge, []string{"13", "21", "89"}, []string{"12", "90", "", "+20", "2 1", "٣٠"}},
		{"gender", validGender, []string{"1", "2"}, []string{"0", "3", "01", ""}},
		{"city", validCity, []string{"0", "1", "158", "000"}, []string{"", "-1", "1.0", "city"}},
		{"status", validStatus, []string{"0", "3", "5"}, []string{"6", "-1", "00", ""}},
		{"final", validFinal, []string{"next", "NEXT", "Restart"}, []string{"nxt", "", "next please"}},
		{"again", validAgain, []string{"restart", "rEsTaRt"}, []string{"next", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, in := range tt.valid {
				assert.True(t, tt.fn(in), "expected %q to be valid", in)
			}
			for _, in := range tt.bad {
				assert.False(t, tt.fn(in), "expected %q to be invalid", in)
			}
		})
	}
}
