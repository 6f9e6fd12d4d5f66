package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageSpecifier(t *testing.T) {
	tests := []struct {
		spec string
		want []int
	}{
		{"", []int{1, 2, 3, 4, 5}},
		{"all", []int{1, 2, 3, 4, 5}},
		{"3", []int{3}},
		{"1,3", []int{1, 3}},
		{"2-4", []int{2, 3, 4}},
		{"4-", []int{4, 5}},
		{" 5, 1-2 ,2", []int{1, 2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParsePageSpecifier(tt.spec, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageSpecifierErrors(t *testing.T) {
	for _, spec := range []string{"0", "6", "4-2", "a", "1,,2", "-3", "1-2-3"} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParsePageSpecifier(spec, 5)
			assert.Error(t, err)
		})
	}
}

func TestParsePageSpecifierRejectsRangeBeyondDocument(t *testing.T) {
	for _, spec := range []string{"1-2000000000", "2-", "1,3-4000000000", "0-2"} {
		t.Run(spec, func(t *testing.T) {
			pages, err := ParsePageSpecifier(spec, 1)
			require.Error(t, err)
			assert.Nil(t, pages)
		})
	}

	_, err := ParsePageSpecifier("1-2000000000", 3)
	assert.EqualError(t, err, "page 2000000000 exceeds total pages (3)")
}
