package backend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
)

var aclTmpl = tmpl(`<h1>Access Rules</h1>

	<table class="table table-sm">
		<tr>
			<th>Effect</th>
			<th>Principal</th>
			<th>Permission</th>
		</tr>

		{{ range .Rules }}
			<tr>
				<td>{{ .Effect }}</td>
				<td>{{ .Who }}</td>
				<td>{{ .Permission }}</td>
			</tr>
		{{ end }}
	</table>

	<h2>Edit</h2>

	<p>One rule per line: <code>Allow|Deny &lt;principal&gt; &lt;permission&gt;</code>.
	Saving replaces the whole list.</p>

	<form method="post">
		<div class="form-group">
			<textarea class="form-control text-monospace" name="rules" rows="{{ .Lines }}">{{ .Serialized }}</textarea>
		</div>
		<button type="submit" class="btn btn-primary" name="submit">Save</button>
	</form>`)

type aclData struct {
	*context
}

func (data *aclData) Rules() []core.Rule {
	return data.db.ACL.Snapshot().Sorted()
}

func (data *aclData) Serialized() string {
	var b strings.Builder
	for _, r := range data.Rules() {
		fmt.Fprintf(&b, "%s %s %s\n", r.Effect, r.Who, r.Permission)
	}
	return b.String()
}

func (data *aclData) Lines() int {
	return len(data.db.ACL.Snapshot()) + 3
}

// parseRuleLines reads the textarea format, one whitespace-separated
// (effect, principal, permission) triple per non-empty line.
func parseRuleLines(text string) (core.RuleSet, error) {

	var rules = core.RuleSet{}

	for _, line := range strings.Split(text, "\n") {

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("expected 3 fields in line %q", line)
		}

		var effect = core.Effect(fields[0])
		if !effect.Valid() {
			return nil, fmt.Errorf("unknown effect %q", fields[0])
		}

		rules[core.Rule{
			Effect:     effect,
			Who:        core.Principal(fields[1]),
			Permission: core.Permission(fields[2]),
		}] = struct{}{}
	}

	return rules, nil
}

func acl(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditACL) {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		rules, err := parseRuleLines(req.PostFormValue("rules"))
		if err != nil {
			ctx.Danger(err)
			ctx.SeeOther("/acl")
			return nil
		}

		if err := ctx.db.EditACL(ctx.User, rules); err != nil {
			return err
		}

		// the caller's own permissions may have changed
		ctx.InvalidatePrincipals()

		ctx.Success("the access control list has been updated")
		ctx.SeeOther("/acl")
		return nil
	}

	return aclTmpl.Execute(w, &aclData{
		context: ctx,
	})
}
