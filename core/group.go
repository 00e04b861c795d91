package core

type DBGroup interface {
	ID() int
	Name() string
	HasMember(u DBUser) (bool, error)
	Members() (map[int]struct{}, error) // user id -> struct{}
}

type GroupDB interface {
	Delete(g DBGroup) error
	GetAllGroups(limit, offset int) ([]DBGroup, error)
	GetGroup(id int) (DBGroup, error)
	GetGroupByName(name string) (DBGroup, error)
	GetGroupsOf(u DBUser) ([]DBGroup, error)
	InsertGroup(name string) (DBGroup, error)
	Join(g DBGroup, u DBUser) error
	Leave(g DBGroup, u DBUser) error
	Writeable() bool
}
