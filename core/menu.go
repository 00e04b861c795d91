package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrMenuGroupNotFound = errors.New("menu group not found")

type DBMenuGroup interface {
	ID() int
	Name() string
}

// A DBMenuItem points either to a direct URL or to a named route with
// parameters, exactly one of URL and Route is non-empty. URL and Name may
// contain {key} placeholders which are filled from caller template
// arguments.
type DBMenuItem interface {
	ID() int
	Name() string
	URL() string
	Route() string
	RouteParams() string // JSON object, route parameter -> value
	Position() int
	Permissions() string // comma-separated permission tokens, empty means public
}

type MenuDB interface {
	GetMenuGroup(name string) (DBMenuGroup, error) // returns ErrMenuGroupNotFound if the name is unknown
	GetAllMenuGroups() ([]DBMenuGroup, error)
	InsertMenuGroup(name string) (DBMenuGroup, error)
	DeleteMenuGroup(g DBMenuGroup) error                  // deletes the items along with the group
	GetMenuItems(g DBMenuGroup) ([]DBMenuItem, error)     // ordered by position, ties broken by id
	ReplaceMenuItems(g DBMenuGroup, items []MenuItemData) error
}

// MenuItemData is the write model for MenuDB.ReplaceMenuItems.
type MenuItemData struct {
	Name        string
	URL         string
	Route       string
	RouteParams string
	Position    int
	Permissions string
}

// A RouteResolver turns a named route plus parameters into an URL path.
type RouteResolver interface {
	ResolveRoute(name string, params map[string]string) (string, error)
}

// A MenuEntry is a menu item which survived permission filtering,
// resolved for display. Last marks the final entry of the sequence, for
// templates which omit a trailing separator.
type MenuEntry struct {
	Href  string
	Label string
	Last  bool
}

// VisibleItems filters the given items against the caller's principals.
//
// An item with a non-empty permissions field is shown only if every token
// passes: the not_authenticated sentinel fails for logged-in callers and
// is decided here rather than by the evaluator, a token equal to the
// universal principal always passes, every other token goes through
// rules.Allows. Items whose URL, label or route cannot be resolved are
// skipped with a log line, they never abort the whole menu.
func VisibleItems(items []DBMenuItem, principals PrincipalSet, rules RuleSet, resolver RouteResolver, tmplArgs map[string]string) []MenuEntry {

	var entries []MenuEntry

	for _, item := range items {

		if !passes(item.Permissions(), principals, rules) {
			continue
		}

		href, err := resolveTarget(item, resolver, tmplArgs)
		if err != nil {
			log.Printf("skipping menu item %q: %v", item.Name(), err)
			continue
		}

		label, err := interpolate(item.Name(), tmplArgs)
		if err != nil {
			log.Printf("skipping menu item %q: %v", item.Name(), err)
			continue
		}

		entries = append(entries, MenuEntry{
			Href:  href,
			Label: label,
		})
	}

	if len(entries) > 0 {
		entries[len(entries)-1].Last = true
	}

	return entries
}

func passes(permissions string, principals PrincipalSet, rules RuleSet) bool {

	if permissions == "" {
		return true
	}

	for _, token := range strings.Split(permissions, ",") {
		token = strings.TrimSpace(token)
		switch {
		case token == "":
			continue
		case Permission(token) == NotAuthenticated:
			if principals.Authenticated() {
				return false
			}
		case Principal(token) == Everyone:
			continue
		default:
			if !rules.Allows(Permission(token), principals) {
				return false
			}
		}
	}

	return true
}

func resolveTarget(item DBMenuItem, resolver RouteResolver, tmplArgs map[string]string) (string, error) {

	if route := item.Route(); route != "" {

		var params = make(map[string]string)
		if blob := item.RouteParams(); blob != "" {
			if err := json.Unmarshal([]byte(blob), &params); err != nil {
				return "", fmt.Errorf("route params of %q: %v", route, err)
			}
		}
		for k, v := range tmplArgs {
			params[k] = v
		}

		if resolver == nil {
			return "", fmt.Errorf("no resolver for route %q", route)
		}
		return resolver.ResolveRoute(route, params)
	}

	return interpolate(item.URL(), tmplArgs)
}

// interpolate substitutes {key} placeholders. A placeholder without a
// value is an error, unbalanced braces are left alone.
func interpolate(s string, args map[string]string) (string, error) {

	if !strings.ContainsRune(s, '{') {
		return s, nil
	}

	var b strings.Builder
	for {
		i := strings.IndexByte(s, '{')
		if i < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		key := s[i+1 : i+j]
		value, ok := args[key]
		if !ok {
			return "", fmt.Errorf("no value for placeholder %q", key)
		}
		b.WriteString(s[:i])
		b.WriteString(value)
		s = s[i+j+1:]
	}
}

// FilteredMenu resolves the user's principals and returns the visible
// entries of the named menu group, in order. An unknown group name yields
// an empty menu, not an error, menus are optional.
func (c *CoreDB) FilteredMenu(name string, u DBUser, tmplArgs map[string]string) ([]MenuEntry, error) {

	principals, err := c.PrincipalsOf(u)
	if err != nil {
		return nil, err
	}

	group, err := c.MenuDB.GetMenuGroup(name)
	if errors.Is(err, ErrMenuGroupNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := c.MenuDB.GetMenuItems(group)
	if err != nil {
		return nil, err
	}

	return VisibleItems(items, principals, c.ACL.Snapshot(), c.Routes, tmplArgs), nil
}
