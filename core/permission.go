package core

// A Permission is an opaque capability token checked by RuleSet.Allows.
// Unknown permissions are not an error, they just never match a rule.
type Permission string

// Permissions which gate the shipped routes.
const (
	PermEditACL      Permission = "edit_acl"
	PermEditContent  Permission = "userarea_edit"
	PermEditMenu     Permission = "edit_menu"
	PermEditSettings Permission = "edit_settings"
)

// NotAuthenticated is a sentinel for menu items which are only shown to
// anonymous visitors. It is evaluated by the menu filter itself and never
// passed to RuleSet.Allows.
const NotAuthenticated Permission = "not_authenticated"

// GroupToken returns the group capability token of the named group.
// Seeding "Allow, group:name, group:name" lets callers test group
// membership through the same evaluator as everything else.
func GroupToken(name string) Permission {
	return Permission(groupPrefix + name)
}
