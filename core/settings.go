package core

import (
	"errors"
)

var ErrSettingNotFound = errors.New("setting not found")

type SettingsDB interface {
	GetSetting(name string) (string, error) // returns ErrSettingNotFound if the name is unknown
	SetSetting(name, value string) error
	AllSettings() (map[string]string, error)
}

// GetSettingOr returns the named setting or the given fallback if it does not exist.
func (c *CoreDB) GetSettingOr(name, fallback string) (string, error) {
	value, err := c.SettingsDB.GetSetting(name)
	if errors.Is(err, ErrSettingNotFound) {
		return fallback, nil
	}
	return value, err
}
