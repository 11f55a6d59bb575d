package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeModuleCode(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "already canonical", input: "CS101", expected: "CS101"},
		{name: "lowercase is uppercased", input: "cs101", expected: "CS101"},
		{name: "surrounding whitespace trimmed", input: "  ma1002\n", expected: "MA1002"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "punctuation rejected", input: "CS-101", wantErr: true},
		{name: "spaces inside rejected", input: "CS 101", wantErr: true},
		{name: "too long", input: strings.Repeat("A", 21), wantErr: true},
		{name: "exactly at limit", input: strings.Repeat("A", 20), expected: strings.Repeat("A", 20)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := NormalizeModuleCode(tc.input)
			if tc.wantErr {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, code)
		})
	}
}

func TestSanitizer_Clean(t *testing.T) {
	s := NewSanitizer()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain text untouched", input: "a solid module", expected: "a solid module"},
		{name: "tags stripped", input: "nice <b>bold</b> claim", expected: "nice bold claim"},
		{name: "script dropped entirely", input: "hello <script>alert(1)</script>world", expected: "hello world"},
		{name: "whitespace trimmed", input: "  padded  ", expected: "padded"},
		{name: "markup only collapses to nothing", input: "<div><img src=x></div>", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, s.Clean(tc.input))
		})
	}
}
