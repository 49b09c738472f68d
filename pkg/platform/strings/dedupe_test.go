package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil passes through", input: nil, want: nil},
		{name: "empty stays empty", input: []string{}, want: []string{}},
		{name: "trims and drops empties", input: []string{" a ", "", "  "}, want: []string{"a"}},
		{name: "dedupes preserving order", input: []string{"b", "a", "b", "a"}, want: []string{"b", "a"}},
		{name: "dedupes after trim", input: []string{"key1", " key1"}, want: []string{"key1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestTrimSpacePtr(t *testing.T) {
	assert.Nil(t, TrimSpacePtr(nil))

	s := "  hello "
	got := TrimSpacePtr(&s)
	assert.Equal(t, "hello", *got)
}
