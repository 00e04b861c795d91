package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
)

var settingsTmpl = tmpl(`<h1>Settings</h1>

	<table class="table table-sm">
		<tr>
			<th>Name</th>
			<th>Value</th>
			<th></th>
		</tr>

		{{ range $name, $value := .Settings }}
			<tr>
				<td>{{ $name }}</td>
				<td><code>{{ Trunc $value }}</code></td>
				<td><a class="btn btn-sm btn-secondary" href="setting/{{ $name }}">edit</a></td>
			</tr>
		{{ end }}
	</table>`)

type settingsData struct {
	*context
}

func (data *settingsData) Settings() (map[string]string, error) {
	return data.db.AllSettings()
}

func settings(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditSettings) {
		return ErrAuth
	}

	return settingsTmpl.Execute(w, &settingsData{
		context: ctx,
	})
}

var settingTmpl = tmpl(`<h1>Setting &raquo;{{ .Name }}&laquo;</h1>

	<form method="post">
		<div class="form-group">
			<textarea class="form-control text-monospace" name="value" rows="12">{{ .Value }}</textarea>
		</div>
		<button type="submit" class="btn btn-primary" name="submit">Save</button>
	</form>`)

type settingData struct {
	*context
	Name  string
	Value string
}

func setting(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditSettings) {
		return ErrAuth
	}

	var name = params.ByName("name")

	// editing the ACL blob here would bypass EditACL
	if name == core.ACLSettingName {
		ctx.Danger(ErrAuth)
		ctx.SeeOther("/acl")
		return nil
	}

	if req.Method == http.MethodPost {

		if err := ctx.db.SetSetting(name, req.PostFormValue("value")); err != nil {
			return err
		}

		ctx.Success("%s has been updated", name)
		ctx.SeeOther("/settings")
		return nil
	}

	value, err := ctx.db.GetSettingOr(name, "")
	if err != nil {
		return err
	}

	return settingTmpl.Execute(w, &settingData{
		context: ctx,
		Name:    name,
		Value:   value,
	})
}
