package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var rootTmpl = tmpl(`<h1>Backend</h1>

	{{ if .LoggedIn }}
		<p>You are logged in as {{ .User.Name }}. Use the navigation above.</p>
	{{ else }}
		<p><a href="login">Login</a> to manage this site.</p>
	{{ end }}`)

func root(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return rootTmpl.Execute(w, ctx)
}
