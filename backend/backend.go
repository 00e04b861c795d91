package backend

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
	"github.com/wansing/vantage/util"
)

var ErrAuth = errors.New("unauthorized")

// we need the CoreDB in the backend
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

// Can evaluates a permission for the caller. It takes a plain string so
// templates can call it.
func (ctx *context) Can(perm string) bool {
	return ctx.Authorized(core.Permission(perm))
}

func (ctx *context) GroupsWriteable() bool {
	return ctx.db.GroupDB.Writeable()
}

func (ctx *context) UsersWriteable() bool {
	return ctx.db.UserDB.Writeable()
}

func middleware(db *core.CoreDB, prefix string, requireLoggedIn bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		// similar to the code in func main

		var request = db.NewRequest(w, req)

		var ctx = &context{
			Prefix:  prefix + "/backend/",
			Request: request,
			db:      db,
		}
		defer ctx.Cleanup()

		if requireLoggedIn && !ctx.LoggedIn() {
			ctx.SeeOther("/")
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			// probably no template has been executed, so execute error template
			errorTmpl.Execute(w, struct {
				*context
				Err error
			}{
				context: ctx,
				Err:     err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func NewBackendRouter(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, prefix, false, root))
	GETAndPOST("/login", middleware(db, prefix, false, login))

	// private
	GETAndPOST("/acl", middleware(db, prefix, true, acl))
	GETAndPOST("/articles", middleware(db, prefix, true, articles))
	GETAndPOST("/article/:slug", middleware(db, prefix, true, article))
	GETAndPOST("/groups", middleware(db, prefix, true, groups))
	GETAndPOST("/group/:id", middleware(db, prefix, true, group))
	router.GET("/logout", middleware(db, prefix, true, logout))
	GETAndPOST("/menus", middleware(db, prefix, true, menus))
	GETAndPOST("/menu/:name", middleware(db, prefix, true, menu))
	router.GET("/settings", middleware(db, prefix, true, settings))
	GETAndPOST("/setting/:name", middleware(db, prefix, true, setting))
	GETAndPOST("/users", middleware(db, prefix, true, users))
	GETAndPOST("/user/:id", middleware(db, prefix, true, user))

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(backendTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var backendTmpl = template.Must(template.New("backend").Funcs(template.FuncMap{
	"Trunc": func(s string) string {
		return util.Trunc(s, 50)
	},
}).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<link rel="stylesheet" type="text/css" href="/static/bootstrap-4.4.1.min.css">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
		<title>Backend</title>
	</head>
	<body>
		<nav class="navbar navbar-expand navbar-light bg-light mb-3">
			<a class="navbar-brand" href=".">Backend</a>
			<ul class="navbar-nav mr-auto">
				{{ if .LoggedIn }}
					{{ if .Can "userarea_edit" }}
						<li class="nav-item"><a class="nav-link" href="articles">Articles</a></li>
					{{ end }}
					{{ if .Can "edit_menu" }}
						<li class="nav-item"><a class="nav-link" href="menus">Menus</a></li>
					{{ end }}
					{{ if .Can "edit_settings" }}
						<li class="nav-item"><a class="nav-link" href="settings">Settings</a></li>
					{{ end }}
					{{ if .Can "edit_acl" }}
						<li class="nav-item"><a class="nav-link" href="acl">Access Rules</a></li>
					{{ end }}
					{{ if .Can "group:admin" }}
						<li class="nav-item"><a class="nav-link" href="groups">Groups</a></li>
						<li class="nav-item"><a class="nav-link" href="users">Users</a></li>
					{{ end }}
				{{ end }}
			</ul>
			<ul class="navbar-nav">
				{{ if .LoggedIn }}
					<li class="nav-item"><a class="nav-link" href="logout">Logout {{ .User.Name }}</a></li>
				{{ else }}
					<li class="nav-item"><a class="nav-link" href="login">Login</a></li>
				{{ end }}
			</ul>
		</nav>
		<div class="container">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>`))
