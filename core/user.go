package core

import (
	"errors"
)

type DBUser interface {
	ID() int
	Name() string // can be email address
}

type UserDB interface {
	ChangePassword(u DBUser, old, new string) error
	Delete(u DBUser) error
	GetUser(id int) (DBUser, error)
	GetUserByName(name string) (DBUser, error)
	GetAllUsers(limit, offset int) ([]DBUser, error)
	InsertUser(name string) (DBUser, error)
	LoginUser(name, password string) (DBUser, error)
	SetPassword(u DBUser, password string) error
	Writeable() bool
}

var ErrEmptyPassword = errors.New("refusing to set empty password")

// shadows UserDB.SetPassword
func (c *CoreDB) SetPassword(u DBUser, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return c.UserDB.SetPassword(u, password)
}
