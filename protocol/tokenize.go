package protocol

import (
	"strings"
	"unicode"
)

// Tokenize splits a line into its whitespace-delimited fields.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// TokenizeConstants splits the constants line. Besides whitespace it treats
// the punctuation of the engine's JSON dump as separators, so both
// `{"KEY": 1, "OTHER": true}` and `KEY 1 OTHER true` yield the same tokens.
func TokenizeConstants(line string) []string {
	return strings.FieldsFunc(line, func(c rune) bool {
		return unicode.IsSpace(c) || strings.ContainsRune(`{},:"`, c)
	})
}
