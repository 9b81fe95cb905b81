package model

// CategoryIndex maps category names to remote identifiers, built once per
// session from the remote category tree. A parent with children is kept in
// the identifier lookup but is no longer selectable; its children are the
// selectable leaves.
type CategoryIndex struct {
	ids   map[string]int64
	names []string
}

// NewCategoryIndex returns an empty index.
func NewCategoryIndex() *CategoryIndex {
	return &CategoryIndex{ids: make(map[string]int64)}
}

// Add registers a category. Only selectable categories appear in Names and
// satisfy Has; every category resolves through ID.
func (x *CategoryIndex) Add(name string, id int64, selectable bool) {
	x.ids[name] = id
	if selectable {
		x.names = append(x.names, name)
	}
}

// Has reports whether name is a selectable category.
func (x *CategoryIndex) Has(name string) bool {
	for _, n := range x.names {
		if n == name {
			return true
		}
	}
	return false
}

// ID resolves a category name to its remote identifier.
func (x *CategoryIndex) ID(name string) (int64, bool) {
	id, ok := x.ids[name]
	return id, ok
}

// Names returns the selectable category names in remote iteration order.
func (x *CategoryIndex) Names() []string {
	return x.names
}

// AccountIndex maps account names to the transaction-targeting identifier.
// The remote account payload carries two identifiers; posting must use the
// transaction-account id, not the account-level one.
type AccountIndex struct {
	ids   map[string]int64
	names []string
}

// NewAccountIndex returns an empty index.
func NewAccountIndex() *AccountIndex {
	return &AccountIndex{ids: make(map[string]int64)}
}

// Add registers an account under its transaction-targeting identifier.
func (x *AccountIndex) Add(name string, id int64) {
	if _, exists := x.ids[name]; !exists {
		x.names = append(x.names, name)
	}
	x.ids[name] = id
}

// Has reports whether name is a known account.
func (x *AccountIndex) Has(name string) bool {
	_, ok := x.ids[name]
	return ok
}

// ID resolves an account name to the identifier used for posting.
func (x *AccountIndex) ID(name string) (int64, bool) {
	id, ok := x.ids[name]
	return id, ok
}

// Names returns the account names in remote iteration order.
func (x *AccountIndex) Names() []string {
	return x.names
}

// SessionContext holds immutable snapshots of the account and category
// indices for one reconciliation session. Refresh by building a new
// context, never by mutating one in place.
type SessionContext struct {
	Accounts   *AccountIndex
	Categories *CategoryIndex
	UserID     int64
}
