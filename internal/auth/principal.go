package auth

// Principal is the acting user resolved for one store.
// It is either an Owner or an AssignedStaff.
type Principal interface {
	UserID() string
	StoreID() string
	principal()
}

// Owner is the single owner of a store. An owner passes every check.
type Owner struct {
	User  string
	Store string
}

// UserID implements Principal.
func (o Owner) UserID() string { return o.User }

// StoreID implements Principal.
func (o Owner) StoreID() string { return o.Store }

func (Owner) principal() {}

// AssignedStaff is a non-owner together with the roles they hold in the
// store and the union of those roles' permissions. A user without any
// assignment is an AssignedStaff with no roles.
type AssignedStaff struct {
	User    string
	Store   string
	RoleIDs []uint
	Granted Set
}

// UserID implements Principal.
func (a AssignedStaff) UserID() string { return a.User }

// StoreID implements Principal.
func (a AssignedStaff) StoreID() string { return a.Store }

func (AssignedStaff) principal() {}

// Evaluate decides whether p fulfils the required permission.
func Evaluate(p Principal, required string) bool {
	switch v := p.(type) {
	case Owner:
		return true
	case AssignedStaff:
		return Satisfies(v.Granted, required)
	case *AssignedStaff:
		return v != nil && Satisfies(v.Granted, required)
	default:
		return false
	}
}

// EffectivePermissions lists the catalog identifiers p currently satisfies,
// manage wildcards expanded.
func EffectivePermissions(p Principal) []string {
	var out []string

	for _, name := range AllNames() {
		if Evaluate(p, name) {
			out = append(out, name)
		}
	}

	return out
}
