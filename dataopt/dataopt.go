// Package dataopt decodes the inline option strings carried by lazy-load
// placeholders, e.g. data-options="icon:spin.gif;type:iframe;offset:200".
//
// Format: entries separated by ';', each entry "name:value". Whitespace
// around entries, names and values is trimmed. Only the first ':' separates
// name from value, so values may themselves contain ':' (URLs).
// Entries without a ':' or with an empty name are skipped.
package dataopt

import "strings"

// Pair is a single decoded entry.
type Pair struct {
	Name  string
	Value string
}

// Parse decodes s into a name → value map. Later duplicates win.
// The result is never nil, so callers can merge it without a presence check.
func Parse(s string) map[string]string {
	pairs := ParsePairs(s)
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Name] = p.Value
	}
	return out
}

// ParsePairs decodes s keeping the order in which names first appear.
// A repeated name keeps its first position and takes the last value.
func ParsePairs(s string) []Pair {
	var pairs []Pair
	index := make(map[string]int)

	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)

		if i, seen := index[name]; seen {
			pairs[i].Value = value
			continue
		}
		index[name] = len(pairs)
		pairs = append(pairs, Pair{Name: name, Value: value})
	}
	return pairs
}

// Format encodes pairs back into the inline syntax.
func Format(pairs []Pair) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(p.Name)
		sb.WriteByte(':')
		sb.WriteString(p.Value)
	}
	return sb.String()
}
