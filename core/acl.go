package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ACLSettingName is the settings key under which the rule list is persisted.
const ACLSettingName = "ACL"

// ACLStore holds the process-wide access rule set.
//
// Readers get the current set through Snapshot, which is an atomic pointer
// load, so concurrent ReplaceAll calls are never observed half-applied.
// Writers are serialized by a mutex and persist the whole set before
// publishing it. Multi-process deployments each hold their own copy and
// must Load again after an external change, or accept staleness until the
// next Load.
type ACLStore struct {
	settings SettingsDB
	mu       sync.Mutex // serializes writers
	rules    atomic.Pointer[RuleSet]
}

func NewACLStore(settings SettingsDB) *ACLStore {
	return &ACLStore{
		settings: settings,
	}
}

// Load hydrates the store from the settings backend. If no rule list has
// been persisted yet, it persists an empty set, which denies everything
// until rules are seeded or edited. Storage errors propagate, a malformed
// blob is refused with ErrMalformedACL. The store never falls back to a
// permissive set on error.
func (s *ACLStore) Load() error {

	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.settings.GetSetting(ACLSettingName)
	switch {
	case errors.Is(err, ErrSettingNotFound):
		return s.replace(RuleSet{})
	case err != nil:
		return fmt.Errorf("loading ACL: %w", err)
	}

	rules, err := ParseRules([]byte(blob))
	if err != nil {
		return err
	}
	s.rules.Store(&rules)
	return nil
}

// ReplaceAll persists the given set and swaps it in. This is the only
// mutation primitive, writes are always whole-set replacements.
func (s *ACLStore) ReplaceAll(rules RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(rules.Clone())
}

// Add persists a copy of the current set extended by the given rules.
// It is a convenience for seeding and the init subcommand, the admin UI
// goes through ReplaceAll.
func (s *ACLStore) Add(rules ...Rule) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	var next = s.snapshot().Clone()
	for _, r := range rules {
		next[r] = struct{}{}
	}
	return s.replace(next)
}

// replace persists and publishes. Callers must hold s.mu. The set is
// published only after the write succeeded, so a failed write leaves the
// old set in effect.
func (s *ACLStore) replace(rules RuleSet) error {
	blob, err := rules.MarshalJSON()
	if err != nil {
		return err
	}
	if err := s.settings.SetSetting(ACLSettingName, string(blob)); err != nil {
		return fmt.Errorf("persisting ACL: %w", err)
	}
	s.rules.Store(&rules)
	return nil
}

// Snapshot returns the current rule set. Before a successful Load it
// returns an empty set, which denies everything. The returned set must
// not be mutated.
func (s *ACLStore) Snapshot() RuleSet {
	return s.snapshot()
}

func (s *ACLStore) snapshot() RuleSet {
	if rules := s.rules.Load(); rules != nil {
		return *rules
	}
	return RuleSet{}
}

// DefaultRules is the rule set which the init subcommand seeds for a
// fresh installation: everything public is expressed through the
// universal principal, logged-in users may edit content, and the admin
// group gets the administrative permissions plus its own group capability
// token. The shipped seed contains no Deny rule, but the evaluator honors
// Deny regardless.
//
// "Allow, Authenticated, not_authenticated" is carried for compatibility
// with existing persisted data. The menu filter decides the
// not_authenticated sentinel itself, so the rule is inert here.
func DefaultRules() RuleSet {
	return NewRuleSet(
		Rule{Allow, Everyone, Permission(Everyone)},
		Rule{Allow, Authenticated, Permission(Authenticated)},
		Rule{Allow, Authenticated, NotAuthenticated},
		Rule{Allow, Authenticated, PermEditContent},
		Rule{Allow, GroupPrincipal("admin"), GroupToken("admin")},
		Rule{Allow, GroupPrincipal("admin"), PermEditACL},
		Rule{Allow, GroupPrincipal("admin"), PermEditMenu},
		Rule{Allow, GroupPrincipal("admin"), PermEditSettings},
	)
}

// AdminRules returns the rules which the init subcommand grants to a group
// to make it an admin group.
func AdminRules(groupName string) []Rule {
	var who = GroupPrincipal(groupName)
	return []Rule{
		{Allow, who, GroupToken(groupName)},
		{Allow, who, PermEditACL},
		{Allow, who, PermEditMenu},
		{Allow, who, PermEditSettings},
	}
}
