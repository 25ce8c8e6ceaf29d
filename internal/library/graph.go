package library

import (
	"fmt"
	"sort"
)

// Kind names one entity kind of a snapshot, matching its JSON key.
type Kind string

const (
	KindBooks          Kind = "books"
	KindCategories     Kind = "categories"
	KindBookCategories Kind = "book_categories"
	KindChallenges     Kind = "challenges"
	KindSessions       Kind = "sessions"
	KindHighlights     Kind = "highlights"
)

// dependencies maps each kind to the kinds its rows reference. Every kind
// also depends on the owning user, which is never replaced.
var dependencies = map[Kind][]Kind{
	KindBooks:          nil,
	KindCategories:     nil,
	KindChallenges:     nil,
	KindBookCategories: {KindBooks, KindCategories},
	KindSessions:       {KindBooks},
	KindHighlights:     {KindBooks},
}

var (
	insertOrder = mustOrder(dependencies)
	deleteOrder = reversed(insertOrder)
)

// InsertOrder returns the kinds with every kind after the kinds it references.
func InsertOrder() []Kind {
	return append([]Kind(nil), insertOrder...)
}

// DeleteOrder returns the kinds with dependents before the kinds they reference.
func DeleteOrder() []Kind {
	return append([]Kind(nil), deleteOrder...)
}

// topoOrder sorts kinds so that dependencies come first. Kinds on the same
// level are ordered by name to keep the result stable.
func topoOrder(deps map[Kind][]Kind) ([]Kind, error) {
	indegree := make(map[Kind]int, len(deps))
	dependents := make(map[Kind][]Kind, len(deps))
	for kind, refs := range deps {
		if _, ok := indegree[kind]; !ok {
			indegree[kind] = 0
		}
		for _, ref := range refs {
			if _, ok := deps[ref]; !ok {
				return nil, fmt.Errorf("kind %s references unknown kind %s", kind, ref)
			}
			indegree[kind]++
			dependents[ref] = append(dependents[ref], kind)
		}
	}

	var ready []Kind
	for kind, n := range indegree {
		if n == 0 {
			ready = append(ready, kind)
		}
	}

	order := make([]Kind, 0, len(deps))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		kind := ready[0]
		ready = ready[1:]
		order = append(order, kind)
		for _, dep := range dependents[kind] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(deps) {
		return nil, fmt.Errorf("dependency cycle between kinds")
	}
	return order, nil
}

func mustOrder(deps map[Kind][]Kind) []Kind {
	order, err := topoOrder(deps)
	if err != nil {
		panic(err)
	}
	return order
}

func reversed(kinds []Kind) []Kind {
	out := make([]Kind, len(kinds))
	for i, k := range kinds {
		out[len(kinds)-1-i] = k
	}
	return out
}
