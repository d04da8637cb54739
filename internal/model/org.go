package model

// Unit is an organizational unit in the organization's hierarchy.
// ParentID is empty only for the root.
type Unit struct {
	ID       string
	Name     string
	ParentID string
}

// Account is a member account. Accounts are always leaves: they belong to
// exactly one unit (or directly to the root) and never have children.
type Account struct {
	ID       string
	Name     string
	ParentID string // owning unit ID, or the root ID
}
