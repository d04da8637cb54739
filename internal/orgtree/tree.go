package orgtree

import (
	"fmt"
	"sort"

	"github.com/shu85t/PutOuCostCategory/internal/model"
)

// MalformedHierarchyError reports a unit or account whose parent chain does
// not resolve to the root: a dangling parent reference or a parent cycle.
type MalformedHierarchyError struct {
	ID     string
	Reason string
}

func (e *MalformedHierarchyError) Error() string {
	return fmt.Sprintf("malformed hierarchy at %q: %s", e.ID, e.Reason)
}

// Tree is the organization's unit hierarchy, built once from a directory
// snapshot and immutable afterwards. Units are held in an arena indexed by
// ID with a derived children multimap, so there are no pointer cycles.
type Tree struct {
	rootID   string
	units    map[string]model.Unit
	children map[string][]string
	accounts []model.Account
}

// Build constructs a Tree from a flat unit list and account memberships.
// Every unit's parent chain must terminate at rootID; a dangling parent or
// a cycle yields a MalformedHierarchyError. Pure construction, no I/O.
func Build(units []model.Unit, accounts []model.Account, rootID string) (*Tree, error) {
	if rootID == "" {
		return nil, &MalformedHierarchyError{ID: rootID, Reason: "empty root ID"}
	}

	byID := make(map[string]model.Unit, len(units))
	for _, u := range units {
		if u.ID == rootID {
			return nil, &MalformedHierarchyError{ID: u.ID, Reason: "root declared as a unit"}
		}
		if _, dup := byID[u.ID]; dup {
			return nil, &MalformedHierarchyError{ID: u.ID, Reason: "duplicate unit ID"}
		}
		byID[u.ID] = u
	}

	// Every unit must reach the root by following parent links.
	for _, u := range units {
		visited := map[string]bool{u.ID: true}
		cur := u
		for cur.ParentID != rootID {
			parent, ok := byID[cur.ParentID]
			if !ok {
				return nil, &MalformedHierarchyError{
					ID:     cur.ID,
					Reason: fmt.Sprintf("parent %q not found", cur.ParentID),
				}
			}
			if visited[parent.ID] {
				return nil, &MalformedHierarchyError{ID: parent.ID, Reason: "parent cycle"}
			}
			visited[parent.ID] = true
			cur = parent
		}
	}

	for _, a := range accounts {
		if a.ParentID != rootID {
			if _, ok := byID[a.ParentID]; !ok {
				return nil, &MalformedHierarchyError{
					ID:     a.ID,
					Reason: fmt.Sprintf("owning unit %q not found", a.ParentID),
				}
			}
		}
	}

	children := make(map[string][]string)
	for _, u := range units {
		children[u.ParentID] = append(children[u.ParentID], u.ID)
	}
	for _, ids := range children {
		sort.Strings(ids)
	}

	sorted := make([]model.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return &Tree{rootID: rootID, units: byID, children: children, accounts: sorted}, nil
}

// RootID returns the root unit's ID.
func (t *Tree) RootID() string { return t.rootID }

// Unit returns a unit by ID.
func (t *Tree) Unit(id string) (model.Unit, bool) {
	u, ok := t.units[id]
	return u, ok
}

// UnitIDs returns all non-root unit IDs in ascending order.
func (t *Tree) UnitIDs() []string {
	ids := make([]string, 0, len(t.units))
	for id := range t.units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Children returns the IDs of a unit's direct child units.
func (t *Tree) Children(id string) []string { return t.children[id] }

// Accounts returns every account in the tree, ascending by ID.
func (t *Tree) Accounts() []model.Account { return t.accounts }
