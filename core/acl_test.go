package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSettings is an in-memory SettingsDB for tests.
type memSettings struct {
	values map[string]string
	err    error // returned by every operation if set
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) GetSetting(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	value, ok := m.values[name]
	if !ok {
		return "", ErrSettingNotFound
	}
	return value, nil
}

func (m *memSettings) SetSetting(name, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[name] = value
	return nil
}

func (m *memSettings) AllSettings() (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.values, nil
}

func TestACLStoreInitializesEmpty(t *testing.T) {

	var settings = newMemSettings()
	var store = NewACLStore(settings)
	require.NoError(t, store.Load())

	// fresh storage: an empty set is persisted, everything is denied
	assert.Empty(t, store.Snapshot())
	assert.False(t, store.Snapshot().Allows(Permission(Everyone), NewPrincipalSet(false)))

	blob, err := settings.GetSetting(ACLSettingName)
	require.NoError(t, err)
	persisted, err := ParseRules([]byte(blob))
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestACLStoreLoadsPersisted(t *testing.T) {

	var settings = newMemSettings()
	settings.values[ACLSettingName] = `[["Allow","group:staff","edit_menu"]]`

	var store = NewACLStore(settings)
	require.NoError(t, store.Load())

	assert.True(t, store.Snapshot().Equal(NewRuleSet(
		Rule{Allow, GroupPrincipal("staff"), PermEditMenu},
	)))
}

func TestACLStoreRefusesMalformed(t *testing.T) {

	var settings = newMemSettings()
	settings.values[ACLSettingName] = `[["Allow","half a rule"]]`

	var store = NewACLStore(settings)
	assert.ErrorIs(t, store.Load(), ErrMalformedACL)

	// fail-closed: nothing was published
	assert.Empty(t, store.Snapshot())
}

func TestACLStorePropagatesStorageErrors(t *testing.T) {

	var boom = errors.New("storage unavailable")
	var settings = newMemSettings()
	settings.err = boom

	var store = NewACLStore(settings)
	assert.ErrorIs(t, store.Load(), boom)
	assert.Empty(t, store.Snapshot())
}

func TestACLStoreReplaceAll(t *testing.T) {

	var settings = newMemSettings()
	var store = NewACLStore(settings)
	require.NoError(t, store.Load())

	var rules = NewRuleSet(
		Rule{Allow, Everyone, Permission(Everyone)},
		Rule{Deny, GroupPrincipal("banned"), Permission(Everyone)},
	)

	require.NoError(t, store.ReplaceAll(rules))
	assert.True(t, store.Snapshot().Equal(rules))

	// idempotence: replacing with the same set changes nothing
	require.NoError(t, store.ReplaceAll(rules))
	assert.True(t, store.Snapshot().Equal(rules))

	// the snapshot is detached from the caller's set
	rules[Rule{Allow, "x", "y"}] = struct{}{}
	assert.False(t, store.Snapshot().Contains(Rule{Allow, "x", "y"}))
}

func TestACLStoreFailedWriteKeepsOldSet(t *testing.T) {

	var settings = newMemSettings()
	var store = NewACLStore(settings)
	require.NoError(t, store.Load())
	require.NoError(t, store.ReplaceAll(DefaultRules()))

	settings.err = errors.New("disk full")
	err := store.ReplaceAll(NewRuleSet(Rule{Allow, "x", "y"}))
	require.Error(t, err)

	// the old set is still in effect
	assert.True(t, store.Snapshot().Equal(DefaultRules()))
}

func TestACLStoreAdd(t *testing.T) {

	var settings = newMemSettings()
	var store = NewACLStore(settings)
	require.NoError(t, store.Load())
	require.NoError(t, store.ReplaceAll(DefaultRules()))

	var extra = Rule{Allow, GroupPrincipal("staff"), GroupToken("staff")}
	require.NoError(t, store.Add(extra))

	assert.True(t, store.Snapshot().Contains(extra))
	assert.Len(t, store.Snapshot(), len(DefaultRules())+1)

	// adding again deduplicates
	require.NoError(t, store.Add(extra))
	assert.Len(t, store.Snapshot(), len(DefaultRules())+1)
}

func TestPersistedFormat(t *testing.T) {

	var settings = newMemSettings()
	var store = NewACLStore(settings)
	require.NoError(t, store.Load())
	require.NoError(t, store.ReplaceAll(NewRuleSet(
		Rule{Allow, GroupPrincipal("admin"), PermEditACL},
		Rule{Allow, Everyone, Permission(Everyone)},
	)))

	// the blob is a JSON array of 3-element string arrays
	var triples [][]string
	require.NoError(t, json.Unmarshal([]byte(settings.values[ACLSettingName]), &triples))
	require.Len(t, triples, 2)
	for _, triple := range triples {
		assert.Len(t, triple, 3)
	}
}
