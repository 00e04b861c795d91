package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	id          int
	name        string
	url         string
	route       string
	routeParams string
	position    int
	permissions string
}

func (i fakeItem) ID() int             { return i.id }
func (i fakeItem) Name() string        { return i.name }
func (i fakeItem) URL() string         { return i.url }
func (i fakeItem) Route() string       { return i.route }
func (i fakeItem) RouteParams() string { return i.routeParams }
func (i fakeItem) Position() int       { return i.position }
func (i fakeItem) Permissions() string { return i.permissions }

type fakeResolver map[string]string // route name -> href pattern with %s for the "slug" param

func (r fakeResolver) ResolveRoute(name string, params map[string]string) (string, error) {
	pattern, ok := r[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}
	return fmt.Sprintf(pattern, params["slug"]), nil
}

func entry(href, label string) MenuEntry {
	return MenuEntry{Href: href, Label: label}
}

func TestVisibleItemsPublic(t *testing.T) {

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "Home", url: "/", permissions: ""},
		fakeItem{id: 2, name: "About", url: "/about", permissions: string(Everyone)},
	}

	got := VisibleItems(items, NewPrincipalSet(false), RuleSet{}, nil, nil)
	require.Len(t, got, 2)
	assert.Equal(t, entry("/", "Home"), got[0])
	assert.Equal(t, MenuEntry{Href: "/about", Label: "About", Last: true}, got[1])
}

func TestVisibleItemsNotAuthenticated(t *testing.T) {

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "Login", url: "/login", permissions: string(NotAuthenticated)},
	}

	// anonymous caller sees the item
	got := VisibleItems(items, NewPrincipalSet(false), RuleSet{}, nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Login", got[0].Label)

	// authenticated caller does not, even though the sentinel has an
	// Allow rule in the shipped seed
	got = VisibleItems(items, NewPrincipalSet(true), DefaultRules(), nil, nil)
	assert.Empty(t, got)
}

func TestVisibleItemsAllTokensMustPass(t *testing.T) {

	var rules = NewRuleSet(
		Rule{Allow, Authenticated, "article_update"},
		Rule{Allow, GroupPrincipal("admin"), GroupToken("admin")},
	)

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "Edit", url: "/edit", permissions: "article_update,group:admin"},
	}

	// satisfies article_update but lacks group:admin
	got := VisibleItems(items, NewPrincipalSet(true, "editor"), rules, nil, nil)
	assert.Empty(t, got)

	// satisfies both
	got = VisibleItems(items, NewPrincipalSet(true, "admin"), rules, nil, nil)
	assert.Len(t, got, 1)
}

func TestVisibleItemsPermissionDenied(t *testing.T) {

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "Admin", url: "/admin", permissions: string(PermEditACL)},
		fakeItem{id: 2, name: "Home", url: "/"},
	}

	got := VisibleItems(items, NewPrincipalSet(true, "editor"), DefaultRules(), nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Home", got[0].Label)
	assert.True(t, got[0].Last)
}

func TestVisibleItemsInterpolation(t *testing.T) {

	var args = map[string]string{"username": "alice"}

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "Profile of {username}", url: "/user/{username}"},
	}

	got := VisibleItems(items, NewPrincipalSet(true), RuleSet{}, nil, args)
	require.Len(t, got, 1)
	assert.Equal(t, "/user/alice", got[0].Href)
	assert.Equal(t, "Profile of alice", got[0].Label)
}

func TestVisibleItemsMissingPlaceholderSkipsItem(t *testing.T) {

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "Home", url: "/"},
		fakeItem{id: 2, name: "Broken", url: "/user/{username}"}, // no args given
		fakeItem{id: 3, name: "About", url: "/about"},
	}

	// the broken item is skipped, the rest of the menu survives
	got := VisibleItems(items, NewPrincipalSet(false), RuleSet{}, nil, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Home", got[0].Label)
	assert.Equal(t, "About", got[1].Label)
	assert.True(t, got[1].Last)
}

func TestVisibleItemsRouteKind(t *testing.T) {

	var resolver = fakeResolver{"article": "/article/%s"}

	var items = []DBMenuItem{
		fakeItem{id: 1, name: "News", route: "article", routeParams: `{"slug":"news"}`},
		fakeItem{id: 2, name: "Nowhere", route: "missing"},
	}

	got := VisibleItems(items, NewPrincipalSet(false), RuleSet{}, resolver, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "/article/news", got[0].Href)
}

func TestVisibleItemsRouteParamsMergeTemplateArgs(t *testing.T) {

	var resolver = fakeResolver{"article": "/article/%s"}

	var items = []DBMenuItem{
		// template args override the stored parameter blob
		fakeItem{id: 1, name: "Current", route: "article", routeParams: `{"slug":"stored"}`},
	}

	got := VisibleItems(items, NewPrincipalSet(false), RuleSet{}, resolver, map[string]string{"slug": "current"})
	require.Len(t, got, 1)
	assert.Equal(t, "/article/current", got[0].Href)
}

func TestVisibleItemsLastFlag(t *testing.T) {
	got := VisibleItems(nil, NewPrincipalSet(false), RuleSet{}, nil, nil)
	assert.Empty(t, got)

	got = VisibleItems([]DBMenuItem{fakeItem{id: 1, name: "One", url: "/"}}, NewPrincipalSet(false), RuleSet{}, nil, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Last)
}

func TestInterpolate(t *testing.T) {

	var args = map[string]string{"a": "1", "b": "2"}

	for _, tc := range []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/plain", "/plain"},
		{"/{a}", "/1"},
		{"/{a}/{b}", "/1/2"},
		{"unbalanced {", "unbalanced {"},
	} {
		got, err := interpolate(tc.in, args)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := interpolate("/{missing}", args)
	assert.Error(t, err)
}
