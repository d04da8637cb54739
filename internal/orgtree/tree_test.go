package orgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shu85t/PutOuCostCategory/internal/model"
)

const root = "r-root"

func unit(id, name, parent string) model.Unit {
	return model.Unit{ID: id, Name: name, ParentID: parent}
}

func account(id, parent string) model.Account {
	return model.Account{ID: id, ParentID: parent}
}

func TestBuild_Valid(t *testing.T) {
	units := []model.Unit{
		unit("ou-1", "OU1", root),
		unit("ou-2", "OU2", root),
		unit("ou-1a", "OU1A", "ou-1"),
	}
	accounts := []model.Account{
		account("111", "ou-1a"),
		account("222", "ou-2"),
		account("000", root),
	}

	tree, err := Build(units, accounts, root)
	require.NoError(t, err)

	assert.Equal(t, root, tree.RootID())
	assert.Equal(t, []string{"ou-1", "ou-1a", "ou-2"}, tree.UnitIDs())
	assert.Equal(t, []string{"ou-1", "ou-2"}, tree.Children(root))
	assert.Equal(t, []string{"ou-1a"}, tree.Children("ou-1"))
	assert.Empty(t, tree.Children("ou-1a"))

	u, ok := tree.Unit("ou-1a")
	require.True(t, ok)
	assert.Equal(t, "OU1A", u.Name)

	// Accounts come back sorted by ID regardless of input order.
	got := tree.Accounts()
	require.Len(t, got, 3)
	assert.Equal(t, "000", got[0].ID)
	assert.Equal(t, "111", got[1].ID)
	assert.Equal(t, "222", got[2].ID)
}

func TestBuild_ParentCycle(t *testing.T) {
	units := []model.Unit{
		unit("ou-1", "OU1", "ou-2"),
		unit("ou-2", "OU2", "ou-1"),
	}

	_, err := Build(units, nil, root)
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "parent cycle", malformed.Reason)
}

func TestBuild_SelfCycle(t *testing.T) {
	units := []model.Unit{unit("ou-1", "OU1", "ou-1")}

	_, err := Build(units, nil, root)
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
}

func TestBuild_DanglingParent(t *testing.T) {
	units := []model.Unit{unit("ou-1", "OU1", "ou-gone")}

	_, err := Build(units, nil, root)
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "ou-1", malformed.ID)
	assert.Contains(t, malformed.Reason, "ou-gone")
}

func TestBuild_DuplicateUnit(t *testing.T) {
	units := []model.Unit{
		unit("ou-1", "OU1", root),
		unit("ou-1", "Other", root),
	}

	_, err := Build(units, nil, root)
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "duplicate unit ID", malformed.Reason)
}

func TestBuild_RootDeclaredAsUnit(t *testing.T) {
	units := []model.Unit{unit(root, "Root", "ou-1")}

	_, err := Build(units, nil, root)
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
}

func TestBuild_AccountWithUnknownUnit(t *testing.T) {
	accounts := []model.Account{account("111", "ou-gone")}

	_, err := Build(nil, accounts, root)
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "111", malformed.ID)
}

func TestBuild_EmptyRootID(t *testing.T) {
	_, err := Build(nil, nil, "")
	var malformed *MalformedHierarchyError
	require.ErrorAs(t, err, &malformed)
}

func TestBuild_EmptyOrganization(t *testing.T) {
	tree, err := Build(nil, nil, root)
	require.NoError(t, err)
	assert.Empty(t, tree.UnitIDs())
	assert.Empty(t, tree.Accounts())
}
