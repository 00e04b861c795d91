package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

func (e Effect) Valid() bool {
	return e == Allow || e == Deny
}

// A Rule is an (effect, principal, permission) triple. Who may reference
// groups which don't exist yet, that is tolerated.
type Rule struct {
	Effect     Effect
	Who        Principal
	Permission Permission
}

// A RuleSet is the de-duplicated, unordered collection of access rules.
// A RuleSet handed out by ACLStore.Snapshot must not be mutated.
type RuleSet map[Rule]struct{}

func NewRuleSet(rules ...Rule) RuleSet {
	var rs = make(RuleSet, len(rules))
	for _, r := range rules {
		rs[r] = struct{}{}
	}
	return rs
}

func (rs RuleSet) Contains(r Rule) bool {
	_, ok := rs[r]
	return ok
}

func (rs RuleSet) Clone() RuleSet {
	var clone = make(RuleSet, len(rs))
	for r := range rs {
		clone[r] = struct{}{}
	}
	return clone
}

func (rs RuleSet) Equal(other RuleSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for r := range rs {
		if !other.Contains(r) {
			return false
		}
	}
	return true
}

// Sorted returns the rules ordered by effect, principal, permission.
func (rs RuleSet) Sorted() []Rule {
	var rules = make([]Rule, 0, len(rs))
	for r := range rs {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Effect != rules[j].Effect {
			return rules[i].Effect < rules[j].Effect
		}
		if rules[i].Who != rules[j].Who {
			return rules[i].Who < rules[j].Who
		}
		return rules[i].Permission < rules[j].Permission
	})
	return rules
}

// Allows decides whether the given principal set may exercise the given
// permission. The default is deny. A matching Deny rule wins over any
// matching Allow rule.
func (rs RuleSet) Allows(perm Permission, principals PrincipalSet) bool {
	var allowed bool
	for r := range rs {
		if r.Permission != perm {
			continue
		}
		if !principals.Contains(r.Who) {
			continue
		}
		if r.Effect == Deny {
			return false
		}
		allowed = true
	}
	return allowed
}

var ErrMalformedACL = errors.New("malformed ACL")

// MarshalJSON encodes the set as an array of 3-element string arrays,
// like [["Allow","system.Everyone","system.Everyone"]]. The output is
// sorted, but consumers must compare persisted ACLs as sets.
func (rs RuleSet) MarshalJSON() ([]byte, error) {
	var triples = make([][3]string, 0, len(rs))
	for _, r := range rs.Sorted() {
		triples = append(triples, [3]string{string(r.Effect), string(r.Who), string(r.Permission)})
	}
	return json.Marshal(triples)
}

// ParseRules decodes a persisted rule list. It refuses blobs which don't
// match the schema rather than guessing, wrapping ErrMalformedACL.
func ParseRules(blob []byte) (RuleSet, error) {

	var triples [][]string
	if err := json.Unmarshal(blob, &triples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedACL, err)
	}

	var rs = make(RuleSet, len(triples))
	for i, triple := range triples {
		if len(triple) != 3 {
			return nil, fmt.Errorf("%w: rule %d has %d elements, want 3", ErrMalformedACL, i, len(triple))
		}
		var effect = Effect(triple[0])
		if !effect.Valid() {
			return nil, fmt.Errorf("%w: rule %d has unknown effect %q", ErrMalformedACL, i, triple[0])
		}
		rs[Rule{effect, Principal(triple[1]), Permission(triple[2])}] = struct{}{}
	}
	return rs, nil
}
