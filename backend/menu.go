package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
)

var menuTmpl = tmpl(`<h1>Menu &raquo;{{ .Selected.Name }}&laquo;</h1>

	<p>One item per line: <code>position | label | target | permissions</code>.
	The target is an URL like <code>/about</code> or a named route like
	<code>route:article?slug=news</code>. Permissions are a comma-separated
	list of tokens, all of which a visitor must pass; leave empty for a
	public item. Saving replaces the whole list.</p>

	<form method="post">
		<div class="form-group">
			<textarea class="form-control text-monospace" name="items" rows="{{ .Lines }}">{{ .Serialized }}</textarea>
		</div>
		<button type="submit" class="btn btn-primary" name="submit">Save</button>
	</form>`)

type menuData struct {
	*context
	Selected core.DBMenuGroup
}

func (data *menuData) items() ([]core.DBMenuItem, error) {
	return data.db.GetMenuItems(data.Selected)
}

func (data *menuData) Serialized() (string, error) {

	items, err := data.items()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, item := range items {
		target := item.URL()
		if route := item.Route(); route != "" {
			target = "route:" + route
			if query := paramsToQuery(item.RouteParams()); query != "" {
				target += "?" + query
			}
		}
		fmt.Fprintf(&b, "%d | %s | %s | %s\n", item.Position(), item.Name(), target, item.Permissions())
	}
	return b.String(), nil
}

func (data *menuData) Lines() int {
	items, err := data.items()
	if err != nil {
		return 10
	}
	return len(items) + 3
}

func paramsToQuery(blob string) string {
	if blob == "" {
		return ""
	}
	var params map[string]string
	if err := json.Unmarshal([]byte(blob), &params); err != nil {
		return ""
	}
	var values = url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

func queryToParams(query string) (string, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", err
	}
	var params = make(map[string]string)
	for k := range values {
		params[k] = values.Get(k)
	}
	blob, err := json.Marshal(params)
	return string(blob), err
}

// parseItemLines reads the textarea format back into item data.
func parseItemLines(text string) ([]core.MenuItemData, error) {

	var items []core.MenuItemData

	for _, line := range strings.Split(text, "\n") {

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, "|", 4)
		if len(fields) != 4 {
			return nil, fmt.Errorf("expected 4 fields in line %q", line)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		position, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("position in line %q: %v", line, err)
		}

		var item = core.MenuItemData{
			Position:    position,
			Name:        fields[1],
			Permissions: fields[3],
		}

		if target := fields[2]; strings.HasPrefix(target, "route:") {
			route := strings.TrimPrefix(target, "route:")
			if i := strings.IndexByte(route, '?'); i >= 0 {
				item.RouteParams, err = queryToParams(route[i+1:])
				if err != nil {
					return nil, fmt.Errorf("route params in line %q: %v", line, err)
				}
				route = route[:i]
			}
			item.Route = route
		} else {
			item.URL = target
		}

		items = append(items, item)
	}

	return items, nil
}

func menu(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditMenu) {
		return ErrAuth
	}

	selected, err := ctx.db.GetMenuGroup(params.ByName("name"))
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		items, err := parseItemLines(req.PostFormValue("items"))
		if err != nil {
			ctx.Danger(err)
			ctx.SeeOther("/menu/%s", selected.Name())
			return nil
		}

		if err := ctx.db.ReplaceMenuItems(selected, items); err != nil {
			return err
		}

		ctx.Success("the menu (%s) has been updated", selected.Name())
		ctx.SeeOther("/menu/%s", selected.Name())
		return nil
	}

	return menuTmpl.Execute(w, &menuData{
		context:  ctx,
		Selected: selected,
	})
}
