package sqldb

import (
	"database/sql"

	"github.com/wansing/vantage/core"
)

type menuGroup struct {
	id   int
	name string
}

func (g *menuGroup) ID() int {
	return g.id
}

func (g *menuGroup) Name() string {
	return g.name
}

type menuItem struct {
	id          int
	name        string
	url         string
	route       string
	routeParams string
	position    int
	permissions string
}

func (i *menuItem) ID() int             { return i.id }
func (i *menuItem) Name() string        { return i.name }
func (i *menuItem) URL() string         { return i.url }
func (i *menuItem) Route() string       { return i.route }
func (i *menuItem) RouteParams() string { return i.routeParams }
func (i *menuItem) Position() int       { return i.position }
func (i *menuItem) Permissions() string { return i.permissions }

type MenuDB struct {
	*sql.DB
	deleteGroup *sql.Stmt
	deleteItems *sql.Stmt
	getGroup    *sql.Stmt
	getGroups   *sql.Stmt
	getItems    *sql.Stmt
	insertGroup *sql.Stmt
	insertItem  *sql.Stmt
}

func NewMenuDB(db *sql.DB) *MenuDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS menugroup (
			id INTEGER PRIMARY KEY,
			name varchar(128) NOT NULL,
			UNIQUE(name)
		);
		CREATE TABLE IF NOT EXISTS menu (
			id INTEGER PRIMARY KEY,
			groupId int(11) NOT NULL,
			position int(11) NOT NULL DEFAULT 1,
			name varchar(128) NOT NULL,
			url varchar(128) NOT NULL DEFAULT '',
			route varchar(128) NOT NULL DEFAULT '',
			routeParams varchar(128) NOT NULL DEFAULT '',
			permissions varchar(128) NOT NULL DEFAULT ''
		);`)

	var menuDB = &MenuDB{}
	menuDB.DB = db
	menuDB.deleteGroup = mustPrepare(db, "DELETE FROM menugroup WHERE id = ?")
	menuDB.deleteItems = mustPrepare(db, "DELETE FROM menu WHERE groupId = ?")
	menuDB.getGroup = mustPrepare(db, "SELECT id FROM menugroup WHERE name = ? LIMIT 1")
	menuDB.getGroups = mustPrepare(db, "SELECT id, name FROM menugroup ORDER BY name")
	menuDB.getItems = mustPrepare(db, "SELECT id, name, url, route, routeParams, position, permissions FROM menu WHERE groupId = ? ORDER BY position, id")
	menuDB.insertGroup = mustPrepare(db, "INSERT INTO menugroup (name) VALUES (?)")
	menuDB.insertItem = mustPrepare(db, "INSERT INTO menu (groupId, position, name, url, route, routeParams, permissions) VALUES (?, ?, ?, ?, ?, ?, ?)")
	return menuDB
}

func (db *MenuDB) GetMenuGroup(name string) (core.DBMenuGroup, error) {
	var g = &menuGroup{
		name: name,
	}
	err := db.getGroup.QueryRow(name).Scan(&g.id)
	if err == sql.ErrNoRows {
		return nil, core.ErrMenuGroupNotFound
	}
	return g, err
}

func (db *MenuDB) GetAllMenuGroups() ([]core.DBMenuGroup, error) {

	rows, err := db.getGroups.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups = []core.DBMenuGroup{}
	for rows.Next() {
		var g = &menuGroup{}
		if err = rows.Scan(&g.id, &g.name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (db *MenuDB) InsertMenuGroup(name string) (core.DBMenuGroup, error) {

	res, err := db.insertGroup.Exec(name)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &menuGroup{
		id:   int(id),
		name: name,
	}, nil
}

// DeleteMenuGroup deletes the group and its items in one transaction.
func (db *MenuDB) DeleteMenuGroup(g core.DBMenuGroup) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.deleteItems).Exec(g.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Stmt(db.deleteGroup).Exec(g.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *MenuDB) GetMenuItems(g core.DBMenuGroup) ([]core.DBMenuItem, error) {

	rows, err := db.getItems.Query(g.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items = []core.DBMenuItem{}
	for rows.Next() {
		var i = &menuItem{}
		if err = rows.Scan(&i.id, &i.name, &i.url, &i.route, &i.routeParams, &i.position, &i.permissions); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, nil
}

// ReplaceMenuItems swaps all items of the group in one transaction. The
// admin UI edits menus as whole lists, so there is no per-item update.
func (db *MenuDB) ReplaceMenuItems(g core.DBMenuGroup, items []core.MenuItemData) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.deleteItems).Exec(g.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	var insert = tx.Stmt(db.insertItem)
	for _, item := range items {
		_, err = insert.Exec(g.ID(), item.Position, item.Name, item.URL, item.Route, item.RouteParams, item.Permissions)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
