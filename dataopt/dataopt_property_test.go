package dataopt

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	names := gen.SliceOfN(6, gen.RegexMatch(`^[a-z][a-z0-9-]{0,8}$`))
	values := gen.SliceOfN(6, gen.RegexMatch(`^[a-zA-Z0-9./:?=-]{0,16}$`))

	// Formatting then parsing yields the last value written for each name.
	properties.Property("format/parse keeps last value", prop.ForAll(
		func(ns, vs []string) bool {
			n := min(len(ns), len(vs))
			pairs := make([]Pair, n)
			want := make(map[string]string, n)
			for i := range n {
				pairs[i] = Pair{Name: ns[i], Value: vs[i]}
				want[ns[i]] = vs[i]
			}

			got := Parse(Format(pairs))
			if len(got) != len(want) {
				return false
			}
			for k, v := range want {
				if got[k] != v {
					return false
				}
			}
			return true
		},
		names, values,
	))

	// Parse never returns nil, whatever the input.
	properties.Property("parse never nil", prop.ForAll(
		func(s string) bool { return Parse(s) != nil },
		gen.AnyString(),
	))

	// Pair order follows first appearance and has no duplicate names.
	properties.Property("pairs unique in first-seen order", prop.ForAll(
		func(ns []string) bool {
			pairs := make([]Pair, len(ns))
			for i, n := range ns {
				pairs[i] = Pair{Name: n, Value: "v"}
			}
			got := ParsePairs(Format(pairs))

			seen := map[string]bool{}
			var order []string
			for _, n := range ns {
				if !seen[n] {
					seen[n] = true
					order = append(order, n)
				}
			}
			if len(got) != len(order) {
				return false
			}
			for i := range order {
				if got[i].Name != order[i] {
					return false
				}
			}
			return true
		},
		names,
	))

	properties.TestingRun(t)
}
