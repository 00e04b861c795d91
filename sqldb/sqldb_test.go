package sqldb

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/vantage/core"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings(t *testing.T) {

	var settings = NewSettingsDB(testDB(t))

	_, err := settings.GetSetting("TITLE")
	assert.ErrorIs(t, err, core.ErrSettingNotFound)

	require.NoError(t, settings.SetSetting("TITLE", "Untitled Website"))
	value, err := settings.GetSetting("TITLE")
	require.NoError(t, err)
	assert.Equal(t, "Untitled Website", value)

	// update, not duplicate
	require.NoError(t, settings.SetSetting("TITLE", "My Website"))
	require.NoError(t, settings.SetSetting("TITLE", "My Website")) // same value again
	value, err = settings.GetSetting("TITLE")
	require.NoError(t, err)
	assert.Equal(t, "My Website", value)

	all, err := settings.AllSettings()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TITLE": "My Website"}, all)
}

func TestACLThroughSettings(t *testing.T) {

	// the ACL store persists through the sqldb settings backend
	var db = testDB(t)
	var store = core.NewACLStore(NewSettingsDB(db))
	require.NoError(t, store.Load())
	require.NoError(t, store.ReplaceAll(core.DefaultRules()))
	assert.True(t, store.Snapshot().Equal(core.DefaultRules()))

	var next = core.NewRuleSet(
		core.Rule{Effect: core.Allow, Who: core.Everyone, Permission: core.Permission(core.Everyone)},
	)
	require.NoError(t, store.ReplaceAll(next))

	// a second store over the same database sees the persisted set
	var again = core.NewACLStore(NewSettingsDB(db))
	require.NoError(t, again.Load())
	assert.True(t, again.Snapshot().Equal(next))
}

func TestUsersAndGroups(t *testing.T) {

	var db = testDB(t)
	var users = NewUserDB(db)
	var groups = NewGroupDB(db)

	alice, err := users.InsertUser("Alice@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", alice.Name()) // cleaned

	require.NoError(t, users.SetPassword(alice, "secret"))

	_, err = users.LoginUser("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuth)
	_, err = users.LoginUser("unknown@example.com", "secret")
	assert.ErrorIs(t, err, ErrAuth)

	loggedIn, err := users.LoginUser("alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID(), loggedIn.ID())

	admins, err := groups.InsertGroup("admin")
	require.NoError(t, err)
	require.NoError(t, groups.Join(admins, alice))

	ok, err := admins.HasMember(alice)
	require.NoError(t, err)
	assert.True(t, ok)

	of, err := groups.GetGroupsOf(alice)
	require.NoError(t, err)
	require.Len(t, of, 1)
	assert.Equal(t, "admin", of[0].Name())

	require.NoError(t, groups.Leave(admins, alice))
	of, err = groups.GetGroupsOf(alice)
	require.NoError(t, err)
	assert.Empty(t, of)
}

func TestMenus(t *testing.T) {

	var menus = NewMenuDB(testDB(t))

	_, err := menus.GetMenuGroup("main_menu")
	assert.ErrorIs(t, err, core.ErrMenuGroupNotFound)

	group, err := menus.InsertMenuGroup("main_menu")
	require.NoError(t, err)

	require.NoError(t, menus.ReplaceMenuItems(group, []core.MenuItemData{
		{Name: "About", URL: "/about", Position: 2},
		{Name: "Home", URL: "/", Position: 1},
		{Name: "News", Route: "article", RouteParams: `{"slug":"news"}`, Position: 2},
	}))

	items, err := menus.GetMenuItems(group)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// position ASC, insertion order breaks the tie between About and News
	assert.Equal(t, "Home", items[0].Name())
	assert.Equal(t, "About", items[1].Name())
	assert.Equal(t, "News", items[2].Name())
	assert.Equal(t, "article", items[2].Route())

	// replace is a whole-list swap
	require.NoError(t, menus.ReplaceMenuItems(group, []core.MenuItemData{
		{Name: "Home", URL: "/", Position: 1},
	}))
	items, err = menus.GetMenuItems(group)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// deleting the group cascades to its items
	require.NoError(t, menus.DeleteMenuGroup(group))
	_, err = menus.GetMenuGroup("main_menu")
	assert.ErrorIs(t, err, core.ErrMenuGroupNotFound)
}

func TestInsertMenuItem(t *testing.T) {

	var c = &core.CoreDB{MenuDB: NewMenuDB(testDB(t))}

	group, err := c.InsertMenuGroup("user_area")
	require.NoError(t, err)

	require.NoError(t, c.InsertMenuItem(group, core.MenuItemData{Name: "Login", URL: "/login", Position: 1}))
	require.NoError(t, c.InsertMenuItem(group, core.MenuItemData{Name: "Logout", URL: "/logout"})) // position assigned

	items, err := c.GetMenuItems(group)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Login", items[0].Name())
	assert.Equal(t, "Logout", items[1].Name())
	assert.Equal(t, 2, items[1].Position())
}

func TestArticles(t *testing.T) {

	var articles = NewArticleDB(testDB(t))

	a, err := articles.InsertArticle("home")
	require.NoError(t, err)
	assert.Equal(t, 0, a.MaxRevisionNo())

	require.NoError(t, articles.AddRevision(a, "# Hello", "[alice] initial"))
	require.NoError(t, articles.AddRevision(a, "# Hello World", "[alice] expanded"))
	assert.Equal(t, 2, a.MaxRevisionNo())

	head, err := articles.GetRevision(a, a.MaxRevisionNo())
	require.NoError(t, err)
	assert.Equal(t, "# Hello World", head.Content())

	revisions, err := articles.GetRevisions(a)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, 2, revisions[0].No()) // newest first
	assert.Equal(t, 1, revisions[1].No())

	// reload from the database
	again, err := articles.GetArticle("home")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), again.ID())
	assert.Equal(t, 2, again.MaxRevisionNo())

	require.NoError(t, articles.DeleteArticle(a))
	_, err = articles.GetArticle("home")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEditAndRevert(t *testing.T) {

	var c = &core.CoreDB{ArticleDB: NewArticleDB(testDB(t))}

	a, err := c.InsertArticle("news")
	require.NoError(t, err)

	require.NoError(t, c.AddRevision(a, "v1", "[alice] initial"))
	require.NoError(t, c.AddRevision(a, "v2", "[alice] rewrite"))

	// editing with unchanged content adds no revision
	head, err := c.Head(a)
	require.NoError(t, err)
	require.NoError(t, c.Edit(a, head, "v2", "no change", "alice"))
	assert.Equal(t, 2, a.MaxRevisionNo())

	// reverting re-adds the old content as a new head
	require.NoError(t, c.Revert(a, 1, "alice"))
	assert.Equal(t, 3, a.MaxRevisionNo())

	head, err = c.Head(a)
	require.NoError(t, err)
	assert.Equal(t, "v1", head.Content())
	assert.Equal(t, "[alice] reverted to #1", head.Note())

	// changed content adds a revision with the editor's note
	require.NoError(t, c.Edit(a, head, "v3", "expanded", "bob"))
	assert.Equal(t, 4, a.MaxRevisionNo())
	head, err = c.Head(a)
	require.NoError(t, err)
	assert.Equal(t, "[bob] expanded", head.Note())
}
