package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
)

var menusTmpl = tmpl(`<h1>Menus</h1>

	<ul>
		{{ range .Groups }}
			<li>
				<a href="menu/{{ .Name }}">{{ .Name }}</a>
				<form method="post" class="d-inline">
					<input type="hidden" name="delete_name" value="{{ .Name }}">
					<button type="submit" class="btn btn-sm btn-link text-danger" name="submit_delete">delete</button>
				</form>
			</li>
		{{ end }}
	</ul>

	<h2>Create Menu</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input class="form-control" name="group_name" placeholder="Menu name">
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create menu</button>
		</div>
	</form>`)

type menusData struct {
	*context
}

func (data *menusData) Groups() ([]core.DBMenuGroup, error) {
	return data.db.GetAllMenuGroups()
}

func menus(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditMenu) {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		if deleteName := strings.TrimSpace(req.PostFormValue("delete_name")); deleteName != "" {

			group, err := ctx.db.GetMenuGroup(deleteName)
			if err != nil {
				return err
			}
			if err := ctx.db.DeleteMenuGroup(group); err != nil {
				return err
			}

			ctx.Success("menu %s has been deleted", deleteName)
			ctx.SeeOther("/menus")
			return nil
		}

		newGroupName := strings.TrimSpace(req.PostFormValue("group_name"))
		if newGroupName == "" {
			return errors.New("missing name")
		}

		if _, err := ctx.db.InsertMenuGroup(newGroupName); err != nil {
			return err
		}

		ctx.Success("menu %s has been created", newGroupName)
		ctx.SeeOther("/menus")
		return nil
	}

	return menusTmpl.Execute(w, &menusData{
		context: ctx,
	})
}
