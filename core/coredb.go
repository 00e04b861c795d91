package core

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

var ErrUnauthorized = errors.New("unauthorized")

// CoreDB wires the storage interfaces, the ACL store and the session
// manager together. Exactly one instance exists per running process.
type CoreDB struct {
	ArticleDB
	GroupDB
	MenuDB
	SettingsDB
	UserDB

	ACL            *ACLStore
	Routes         RouteResolver // set by the site router, may be nil
	SessionManager *scs.SessionManager
	SqlDB          *sql.DB // required for the session store
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"         // 'The default value is "/". Passing the empty string "" will result in it being set to the path that the cookie was issued from.'
	c.SessionManager.Cookie.Persist = false                 // Don't store cookie across browser sessions. Required for GDPR cookie consent exemption criterion B. https://ec.europa.eu/justice/article-29/documentation/opinion-recommendation/files/2012/wp194_en.pdf
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	c.ACL = NewACLStore(c.SettingsDB)
	return c.ACL.Load()
}

// Authorize resolves the user's principals and evaluates the permission
// against the current rule set. A nil user is an anonymous caller, not an
// error.
func (c *CoreDB) Authorize(perm Permission, u DBUser) (bool, error) {
	principals, err := c.PrincipalsOf(u)
	if err != nil {
		return false, err
	}
	return c.ACL.Snapshot().Allows(perm, principals), nil
}

// EditACL replaces the whole rule set. It is gated on PermEditACL through
// the same evaluator it edits.
func (c *CoreDB) EditACL(u DBUser, rules RuleSet) error {
	ok, err := c.Authorize(PermEditACL, u)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return c.ACL.ReplaceAll(rules)
}

// InsertMenuItem appends an item at the end of the group. Seeding and the
// admin UI otherwise edit menus as whole-list replacements.
func (c *CoreDB) InsertMenuItem(g DBMenuGroup, data MenuItemData) error {

	items, err := c.MenuDB.GetMenuItems(g)
	if err != nil {
		return err
	}

	var all = make([]MenuItemData, 0, len(items)+1)
	for _, item := range items {
		all = append(all, MenuItemData{
			Name:        item.Name(),
			URL:         item.URL(),
			Route:       item.Route(),
			RouteParams: item.RouteParams(),
			Position:    item.Position(),
			Permissions: item.Permissions(),
		})
	}
	if data.Position == 0 {
		data.Position = len(all) + 1
	}
	all = append(all, data)

	return c.MenuDB.ReplaceMenuItems(g, all)
}
