package backend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
)

var articlesTmpl = tmpl(`<h1>Articles</h1>

	<ul>
		{{ range .Articles }}
			<li><a href="article/{{ .Slug }}">{{ .Slug }}</a> ({{ .MaxRevisionNo }} revisions)</li>
		{{ end }}
	</ul>

	<h2>Create Article</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input class="form-control" name="slug" placeholder="Slug">
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create article</button>
		</div>
	</form>`)

type articlesData struct {
	*context
}

func (data *articlesData) Articles() ([]core.DBArticle, error) {
	return data.db.GetAllArticles(10000, 0)
}

func articles(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.Authorized(core.PermEditContent) {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		slug := core.NormalizeSlug(req.PostFormValue("slug"))
		if slug == "" {
			return errors.New("missing slug")
		}

		if _, err := ctx.db.InsertArticle(slug); err != nil {
			return err
		}

		ctx.Success("%s has been created", slug)
		ctx.SeeOther("/article/%s", slug)
		return nil
	}

	return articlesTmpl.Execute(w, &articlesData{
		context: ctx,
	})
}
