package sqldb

import (
	"database/sql"

	"github.com/wansing/vantage/core"
)

type SettingsDB struct {
	*sql.DB
	get    *sql.Stmt
	getAll *sql.Stmt
	insert *sql.Stmt
	update *sql.Stmt
}

func NewSettingsDB(db *sql.DB) *SettingsDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS setting (
			id INTEGER PRIMARY KEY,
			name varchar(32) NOT NULL,
			value text NOT NULL,
			UNIQUE(name)
		);`)

	var settingsDB = &SettingsDB{}
	settingsDB.DB = db
	settingsDB.get = mustPrepare(db, "SELECT value FROM setting WHERE name = ? LIMIT 1")
	settingsDB.getAll = mustPrepare(db, "SELECT name, value FROM setting ORDER BY name")
	settingsDB.insert = mustPrepare(db, "INSERT INTO setting (name, value) VALUES (?, ?)")
	settingsDB.update = mustPrepare(db, "UPDATE setting SET value = ? WHERE name = ?")
	return settingsDB
}

func (db *SettingsDB) GetSetting(name string) (string, error) {
	var value string
	err := db.get.QueryRow(name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", core.ErrSettingNotFound
	}
	return value, err
}

// SetSetting updates the named setting, creating it if it does not exist.
// The update-then-insert dance works on both SQLite and MySQL.
func (db *SettingsDB) SetSetting(name, value string) error {

	res, err := db.update.Exec(value, name)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// the update matched no row, but it might have matched one with the same value
	if _, err := db.GetSetting(name); err == nil {
		return nil
	}

	_, err = db.insert.Exec(name, value)
	return err
}

func (db *SettingsDB) AllSettings() (map[string]string, error) {

	rows, err := db.getAll.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = make(map[string]string)
	for rows.Next() {
		var name, value string
		if err = rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		all[name] = value
	}
	return all, nil
}
