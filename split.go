package graphcap

import "strings"

// SplitString splits s on the separator byte. Unlike a tokenizer, it
// preserves empty fields: an empty input yields one empty field, and a
// trailing separator yields a trailing empty field.
func SplitString(s string, sep byte) []string {
	return strings.Split(s, string(sep))
}
