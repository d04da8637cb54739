package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shu85t/PutOuCostCategory/internal/orgtree"
)

// Rule maps one category label to the exact set of account IDs it covers.
type Rule struct {
	Label      string
	AccountIDs []string
}

// PartitionViolationError signals that the generated rules do not partition
// the account set: some account is missing from every rule or appears in
// more than one. It indicates an internal bug, never bad remote data, and
// must abort the run rather than publish a miscounted category.
type PartitionViolationError struct {
	Missing    []string
	Duplicated []string
}

func (e *PartitionViolationError) Error() string {
	return fmt.Sprintf("rules do not partition the account set (missing: %s, duplicated: %s)",
		strings.Join(e.Missing, ","), strings.Join(e.Duplicated, ","))
}

// GenerateRules assigns every account to the label of its owning unit and
// groups the assignments into rules. The labeler has already frozen labels
// at the depth limit, so assignment is a direct lookup. Rules are ordered
// ascending by label and account IDs ascending within each rule, so
// repeated runs over the same tree serialize byte-identically. Labels with
// no accounts produce no rule.
func GenerateRules(tree *orgtree.Tree, labels map[string]orgtree.LabeledNode) ([]Rule, error) {
	accounts := tree.Accounts()

	byLabel := make(map[string][]string)
	seen := make(map[string]bool, len(accounts))
	var missing, duplicated []string
	for _, a := range accounts {
		node, ok := labels[a.ParentID]
		if !ok {
			missing = append(missing, a.ID)
			continue
		}
		if seen[a.ID] {
			duplicated = append(duplicated, a.ID)
			continue
		}
		seen[a.ID] = true
		byLabel[node.Label] = append(byLabel[node.Label], a.ID)
	}
	if len(missing) > 0 || len(duplicated) > 0 {
		return nil, &PartitionViolationError{Missing: missing, Duplicated: duplicated}
	}

	names := make([]string, 0, len(byLabel))
	for label := range byLabel {
		names = append(names, label)
	}
	sort.Strings(names)

	rules := make([]Rule, 0, len(names))
	total := 0
	for _, label := range names {
		ids := byLabel[label]
		sort.Strings(ids)
		total += len(ids)
		rules = append(rules, Rule{Label: label, AccountIDs: ids})
	}

	// Grouping preserves every assignment exactly once; a count mismatch
	// here means the bookkeeping above is broken.
	if total != len(accounts) {
		return nil, &PartitionViolationError{
			Missing: []string{fmt.Sprintf("%d of %d accounts", len(accounts)-total, len(accounts))},
		}
	}
	return rules, nil
}
