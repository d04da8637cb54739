package orgtree

import (
	"strings"

	"github.com/shu85t/PutOuCostCategory/internal/model"
)

const (
	// RootLabel is the category label for accounts that sit directly
	// under the organization root.
	RootLabel = "Root"

	labelSeparator = "-"
)

// LabeledNode is a unit annotated with its depth below the root and its
// category label. Depth is 1 for a direct child of the root; the root
// itself has depth 0 and the literal label "Root".
type LabeledNode struct {
	Unit  model.Unit
	Depth int
	Label string
}

// LabelUnits computes a LabeledNode for every unit in the tree, plus an
// entry for the root itself. A unit's label is the hyphen-join of the unit
// names on its path from depth 1 down to itself, truncated to the first
// maxDepth names: once a unit sits deeper than maxDepth its label freezes
// at the ancestor at exactly maxDepth, so all accounts below share that
// ancestor's label. maxDepth must be >= 1 (callers validate).
//
// The result depends only on the tree shape, unit names, and maxDepth.
// Sibling units with identical names produce identical labels; their
// accounts end up merged under one category. That matches the upstream
// naming policy and is intentionally not disambiguated by ID.
func LabelUnits(t *Tree, maxDepth int) map[string]LabeledNode {
	labels := make(map[string]LabeledNode, len(t.units)+1)
	labels[t.rootID] = LabeledNode{
		Unit:  model.Unit{ID: t.rootID, Name: RootLabel},
		Depth: 0,
		Label: RootLabel,
	}

	for id, u := range t.units {
		// Iterative upward walk; Build guarantees the chain reaches
		// the root, so deep hierarchies cost no stack.
		var path []string
		for cur := u; ; {
			path = append(path, cur.Name)
			if cur.ParentID == t.rootID {
				break
			}
			cur = t.units[cur.ParentID]
		}
		depth := len(path)
		// path is leaf-first; reverse to root-first before truncating.
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		if len(path) > maxDepth {
			path = path[:maxDepth]
		}
		labels[id] = LabeledNode{Unit: u, Depth: depth, Label: strings.Join(path, labelSeparator)}
	}
	return labels
}
