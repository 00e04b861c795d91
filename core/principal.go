package core

// A Principal is an identity class an access rule can match against.
//
// There are three kinds: the universal principal Everyone (matches every
// caller), Authenticated (matches every logged-in caller) and group
// principals of the form "group:name" (match members of that group).
type Principal string

const (
	Everyone      Principal = "system.Everyone"
	Authenticated Principal = "system.Authenticated"
)

const groupPrefix = "group:"

// GroupPrincipal returns the principal which matches members of the named group.
func GroupPrincipal(name string) Principal {
	return Principal(groupPrefix + name)
}

type PrincipalSet map[Principal]struct{}

// NewPrincipalSet resolves an identity to its canonical principal set.
// Anonymous callers get {Everyone}, logged-in callers additionally get
// Authenticated and one group principal per membership.
func NewPrincipalSet(loggedIn bool, groups ...string) PrincipalSet {
	var ps = PrincipalSet{
		Everyone: struct{}{},
	}
	if loggedIn {
		ps[Authenticated] = struct{}{}
		for _, group := range groups {
			ps[GroupPrincipal(group)] = struct{}{}
		}
	}
	return ps
}

func (ps PrincipalSet) Contains(p Principal) bool {
	_, ok := ps[p]
	return ok
}

// Authenticated returns whether the set belongs to a logged-in caller.
func (ps PrincipalSet) Authenticated() bool {
	return ps.Contains(Authenticated)
}

// PrincipalsOf resolves the given user, which may be nil, against the group directory.
func (c *CoreDB) PrincipalsOf(u DBUser) (PrincipalSet, error) {
	if u == nil {
		return NewPrincipalSet(false), nil
	}
	groups, err := c.GroupDB.GetGroupsOf(u)
	if err != nil {
		return nil, err
	}
	var names = make([]string, len(groups))
	for i := range groups {
		names[i] = groups[i].Name()
	}
	return NewPrincipalSet(true, names...), nil
}
