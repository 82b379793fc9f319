package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "case and whitespace variants collapse to one",
			in:   []string{"Finance", "finance", " FINANCE "},
			want: []string{"finance"},
		},
		{
			name: "first-seen order preserved",
			in:   []string{"HR", "finance", "hr", "Legal"},
			want: []string{"hr", "finance", "legal"},
		},
		{
			name: "empties dropped",
			in:   []string{"", "   ", "ops"},
			want: []string{"ops"},
		},
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTagNames(tt.in))
		})
	}
}
