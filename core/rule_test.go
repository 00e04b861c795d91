package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowsDefaultDeny(t *testing.T) {

	var rules = NewRuleSet(
		Rule{Allow, GroupPrincipal("admin"), PermEditACL},
	)

	// no rule for the permission at all
	assert.False(t, rules.Allows("unknown_permission", NewPrincipalSet(true, "admin")))

	// rule exists but no principal matches
	assert.False(t, rules.Allows(PermEditACL, NewPrincipalSet(true, "editor")))

	// empty rule set denies everything
	assert.False(t, RuleSet{}.Allows(Permission(Everyone), NewPrincipalSet(false)))
}

func TestAllowsDenyPrecedence(t *testing.T) {

	var rules = NewRuleSet(
		Rule{Allow, Authenticated, "vote"},
		Rule{Deny, GroupPrincipal("banned"), "vote"},
	)

	assert.True(t, rules.Allows("vote", NewPrincipalSet(true, "editor")))
	assert.False(t, rules.Allows("vote", NewPrincipalSet(true, "banned")))
	assert.False(t, rules.Allows("vote", NewPrincipalSet(true, "editor", "banned")))
}

func TestAllowsEveryonePublic(t *testing.T) {
	// "Allow, Everyone, Everyone" is how public actions are expressed
	var rules = NewRuleSet(
		Rule{Allow, Everyone, Permission(Everyone)},
	)
	assert.True(t, rules.Allows(Permission(Everyone), NewPrincipalSet(false)))
	assert.True(t, rules.Allows(Permission(Everyone), NewPrincipalSet(true, "admin")))
}

func TestAllowsGroupScenario(t *testing.T) {
	var rules = NewRuleSet(
		Rule{Allow, GroupPrincipal("admin"), PermEditACL},
	)
	// caller is authenticated but in the wrong group
	assert.False(t, rules.Allows(PermEditACL, NewPrincipalSet(true, "editor")))
	assert.True(t, rules.Allows(PermEditACL, NewPrincipalSet(true, "editor", "admin")))
}

func TestAllowsGroupToken(t *testing.T) {
	// membership in a group implies the group's own capability token
	var rules = NewRuleSet(
		Rule{Allow, GroupPrincipal("admin"), GroupToken("admin")},
	)
	assert.True(t, rules.Allows(GroupToken("admin"), NewPrincipalSet(true, "admin")))
	assert.False(t, rules.Allows(GroupToken("admin"), NewPrincipalSet(true)))
}

func TestPrincipalSet(t *testing.T) {

	var anon = NewPrincipalSet(false, "ignored")
	assert.Equal(t, PrincipalSet{Everyone: struct{}{}}, anon)
	assert.False(t, anon.Authenticated())

	var member = NewPrincipalSet(true, "editor", "admin")
	assert.True(t, member.Authenticated())
	assert.True(t, member.Contains(Everyone))
	assert.True(t, member.Contains(GroupPrincipal("editor")))
	assert.False(t, member.Contains(GroupPrincipal("banned")))
}

func TestRuleSetDeduplicates(t *testing.T) {
	var rs = NewRuleSet(
		Rule{Allow, Everyone, "foo"},
		Rule{Allow, Everyone, "foo"},
		Rule{Allow, Everyone, "bar"},
	)
	assert.Len(t, rs, 2)
}

func TestRulesRoundTrip(t *testing.T) {

	var rs = NewRuleSet(
		Rule{Allow, Everyone, Permission(Everyone)},
		Rule{Allow, GroupPrincipal("admin"), PermEditACL},
		Rule{Deny, GroupPrincipal("banned"), "vote"},
	)

	blob, err := rs.MarshalJSON()
	require.NoError(t, err)

	parsed, err := ParseRules(blob)
	require.NoError(t, err)
	assert.True(t, rs.Equal(parsed))
}

func TestParseRulesWireFormat(t *testing.T) {

	// the exact on-disk shape, order must not matter
	var blob = `[["Allow","group:admin","edit_acl"],["Allow","system.Everyone","system.Everyone"]]`

	rs, err := ParseRules([]byte(blob))
	require.NoError(t, err)
	assert.True(t, rs.Equal(NewRuleSet(
		Rule{Allow, Everyone, Permission(Everyone)},
		Rule{Allow, GroupPrincipal("admin"), PermEditACL},
	)))
}

func TestParseRulesMalformed(t *testing.T) {

	for _, blob := range []string{
		`{"not":"a list"}`,
		`[["Allow","system.Everyone"]]`,
		`[["Allow","a","b","c"]]`,
		`[["Maybe","system.Everyone","system.Everyone"]]`,
		`not json at all`,
	} {
		_, err := ParseRules([]byte(blob))
		assert.ErrorIs(t, err, ErrMalformedACL, "blob: %s", blob)
	}
}

func TestSortedIsStable(t *testing.T) {

	var rs = NewRuleSet(
		Rule{Deny, "b", "x"},
		Rule{Allow, "b", "y"},
		Rule{Allow, "b", "x"},
		Rule{Allow, "a", "z"},
	)

	var sorted = rs.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, Rule{Allow, "a", "z"}, sorted[0])
	assert.Equal(t, Rule{Allow, "b", "x"}, sorted[1])
	assert.Equal(t, Rule{Allow, "b", "y"}, sorted[2])
	assert.Equal(t, Rule{Deny, "b", "x"}, sorted[3])
}
