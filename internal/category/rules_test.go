package category

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shu85t/PutOuCostCategory/internal/model"
	"github.com/shu85t/PutOuCostCategory/internal/orgtree"
)

const root = "r-root"

func buildTree(t *testing.T, units []model.Unit, accounts []model.Account) *orgtree.Tree {
	t.Helper()
	tree, err := orgtree.Build(units, accounts, root)
	require.NoError(t, err)
	return tree
}

// Root -> {OU1 -> {OU1A (acct 111)}, OU2 (acct 222)}
func scenarioTree(t *testing.T) *orgtree.Tree {
	t.Helper()
	units := []model.Unit{
		{ID: "ou-1", Name: "OU1", ParentID: root},
		{ID: "ou-2", Name: "OU2", ParentID: root},
		{ID: "ou-1a", Name: "OU1A", ParentID: "ou-1"},
	}
	accounts := []model.Account{
		{ID: "111", ParentID: "ou-1a"},
		{ID: "222", ParentID: "ou-2"},
	}
	return buildTree(t, units, accounts)
}

func TestGenerateRules_DepthOne(t *testing.T) {
	tree := scenarioTree(t)
	rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, 1))
	require.NoError(t, err)

	assert.Equal(t, []Rule{
		{Label: "OU1", AccountIDs: []string{"111"}},
		{Label: "OU2", AccountIDs: []string{"222"}},
	}, rules)
}

func TestGenerateRules_DepthTwo(t *testing.T) {
	tree := scenarioTree(t)
	rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, 2))
	require.NoError(t, err)

	assert.Equal(t, []Rule{
		{Label: "OU1-OU1A", AccountIDs: []string{"111"}},
		{Label: "OU2", AccountIDs: []string{"222"}},
	}, rules)
}

func TestGenerateRules_RootAccount(t *testing.T) {
	units := []model.Unit{
		{ID: "ou-1", Name: "OU1", ParentID: root},
	}
	accounts := []model.Account{
		{ID: "000", ParentID: root},
		{ID: "111", ParentID: "ou-1"},
	}
	tree := buildTree(t, units, accounts)

	rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, 3))
	require.NoError(t, err)

	// Accounts directly under the root get the literal "Root" label,
	// alongside the deeper rules.
	assert.Equal(t, []Rule{
		{Label: "OU1", AccountIDs: []string{"111"}},
		{Label: "Root", AccountIDs: []string{"000"}},
	}, rules)
}

func TestGenerateRules_EmptySubtreeOmitted(t *testing.T) {
	units := []model.Unit{
		{ID: "ou-1", Name: "OU1", ParentID: root},
		{ID: "ou-empty", Name: "Empty", ParentID: root},
		{ID: "ou-empty-child", Name: "EmptyChild", ParentID: "ou-empty"},
	}
	accounts := []model.Account{{ID: "111", ParentID: "ou-1"}}
	tree := buildTree(t, units, accounts)

	rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, 2))
	require.NoError(t, err)

	require.Len(t, rules, 1)
	assert.Equal(t, "OU1", rules[0].Label)
}

func TestGenerateRules_NoAccounts(t *testing.T) {
	tree := buildTree(t, []model.Unit{{ID: "ou-1", Name: "OU1", ParentID: root}}, nil)

	rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, 1))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

// wideTree spreads accounts over every unit of a three-level hierarchy.
func wideTree(t *testing.T) *orgtree.Tree {
	t.Helper()
	var units []model.Unit
	var accounts []model.Account
	acct := 0
	for i := 0; i < 3; i++ {
		top := fmt.Sprintf("ou-%d", i)
		units = append(units, model.Unit{ID: top, Name: fmt.Sprintf("Top%d", i), ParentID: root})
		for j := 0; j < 3; j++ {
			mid := fmt.Sprintf("%s-%d", top, j)
			units = append(units, model.Unit{ID: mid, Name: fmt.Sprintf("Mid%d", j), ParentID: top})
			for k := 0; k < 2; k++ {
				acct++
				accounts = append(accounts, model.Account{ID: fmt.Sprintf("%012d", acct), ParentID: mid})
			}
		}
	}
	accounts = append(accounts, model.Account{ID: "999999999999", ParentID: root})
	return buildTree(t, units, accounts)
}

func TestGenerateRules_PartitionProperty(t *testing.T) {
	tree := wideTree(t)

	for depth := 1; depth <= 4; depth++ {
		rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, depth))
		require.NoError(t, err, "depth %d", depth)

		seen := make(map[string]string)
		for _, r := range rules {
			for _, id := range r.AccountIDs {
				prev, dup := seen[id]
				assert.False(t, dup, "account %s in both %q and %q at depth %d", id, prev, r.Label, depth)
				seen[id] = r.Label
			}
		}
		assert.Len(t, seen, len(tree.Accounts()), "depth %d", depth)
	}
}

func TestGenerateRules_DistinctLabelsNeverShrink(t *testing.T) {
	tree := wideTree(t)

	prev := 0
	for depth := 1; depth <= 4; depth++ {
		rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, depth))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(rules), prev, "depth %d", depth)
		prev = len(rules)
	}
}

func TestGenerateRules_ByteIdenticalAcrossRuns(t *testing.T) {
	tree := wideTree(t)

	serialize := func() string {
		rules, err := GenerateRules(tree, orgtree.LabelUnits(tree, 2))
		require.NoError(t, err)
		return fmt.Sprintf("%#v", rules)
	}

	first := serialize()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, serialize())
	}
}

func TestGenerateRules_PartitionViolation(t *testing.T) {
	tree := scenarioTree(t)
	labels := orgtree.LabelUnits(tree, 2)
	delete(labels, "ou-2") // simulate a labeler bug

	_, err := GenerateRules(tree, labels)
	var violation *PartitionViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, []string{"222"}, violation.Missing)
}
