/*
Package core contains the access-control engine and the storage interfaces of the CMS.

Access Control

Authorization is a flat list of (effect, principal, permission) rules,
kept as a set in an ACLStore and persisted as JSON under one settings
key. A request's caller is resolved to a principal set: Everyone, plus
Authenticated and one "group:name" principal per membership when logged
in. RuleSet.Allows decides a permission with default deny; an explicit
Deny rule wins over any Allow rule.

Permissions are opaque tokens. Route handlers gate themselves with
Request.Authorized, and the menu filter uses the same evaluator to decide
which navigation entries a caller gets to see. A group's own capability
token ("group:name" used as a permission) makes "is this caller in group
X" expressible as an ordinary rule.

Menus

A menu group is a named, ordered list of items. Each item carries a
comma-separated permission list; all tokens must pass for the item to be
shown. The special token "not_authenticated" marks items for anonymous
visitors only and is decided by the filter itself.
*/
package core
