package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
	"github.com/wansing/vantage/util"
)

var articleTmpl = tmpl(`<h1>Article &raquo;{{ .Selected.Slug }}&laquo;</h1>

	<form method="post">
		<div class="form-group">
			<textarea class="form-control text-monospace" name="content" rows="20">{{ .Content }}</textarea>
		</div>
		<div class="form-group">
			<input class="form-control" name="note" placeholder="Version note">
		</div>
		<button type="submit" class="btn btn-primary" name="submit">Save</button>
	</form>

	<h2>Revisions</h2>

	<table class="table table-sm">
		<tr>
			<th>No</th>
			<th>Changed</th>
			<th>Note</th>
			<th>Content</th>
			<th></th>
		</tr>

		{{ range .Revisions }}
			<tr>
				<td>{{ .No }}</td>
				<td>{{ $.FormatDateTime .TsChanged }}</td>
				<td>{{ .Note }}</td>
				<td><code>{{ $.Preview .Content }}</code></td>
				<td>
					<form method="post">
						<input type="hidden" name="revert_to" value="{{ .No }}">
						<button type="submit" class="btn btn-sm btn-secondary" name="submit_revert">revert</button>
					</form>
				</td>
			</tr>
		{{ end }}
	</table>`)

type articleData struct {
	*context
	Selected core.DBArticle
}

func (data *articleData) Content() (string, error) {
	head, err := data.db.Head(data.Selected)
	if err != nil || head == nil {
		return "", err
	}
	return head.Content(), nil
}

func (data *articleData) Revisions() ([]core.DBRevision, error) {
	return data.db.GetRevisions(data.Selected)
}

func (data *articleData) Preview(content string) string {
	return util.Trunc(content, 80)
}

func article(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditContent) {
		return ErrAuth
	}

	selected, err := ctx.db.GetArticle(params.ByName("slug"))
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		if revertTo := req.PostFormValue("revert_to"); revertTo != "" {

			no, err := strconv.Atoi(revertTo)
			if err != nil {
				ctx.Danger(err)
				ctx.SeeOther("/article/%s", selected.Slug())
				return nil
			}

			if err := ctx.db.Revert(selected, no, ctx.User.Name()); err != nil {
				return err
			}

			ctx.Success("%s was reverted", selected.Slug())
			ctx.SeeOther("/article/%s", selected.Slug())
			return nil
		}

		head, err := ctx.db.Head(selected)
		if err != nil {
			return err
		}

		if err := ctx.db.Edit(selected, head, req.PostFormValue("content"), req.PostFormValue("note"), ctx.User.Name()); err != nil {
			return err
		}

		ctx.Success("%s has been updated", selected.Slug())
		ctx.SeeOther("/article/%s", selected.Slug())
		return nil
	}

	return articleTmpl.Execute(w, &articleData{
		context:  ctx,
		Selected: selected,
	})
}
