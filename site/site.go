// Package site serves the public pages: articles rendered as CommonMark,
// framed by permission-filtered menus.
package site

import (
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/vantage/core"
	"github.com/wansing/vantage/util"
	"gitlab.com/golang-commonmark/markdown"
)

var commonMark = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// HomeSlug is the article served at "/".
const HomeSlug = "home"

type Site struct {
	db     *core.CoreDB
	router *httprouter.Router
	routes map[string]string // route name -> pattern with :params
}

func New(db *core.CoreDB) *Site {

	var s = &Site{
		db:     db,
		router: httprouter.New(),
		routes: make(map[string]string),
	}

	s.route("home", "/", s.home)
	s.route("articles", "/articles", s.articles)
	s.route("article", "/article/:slug", s.article)

	// named routes into the backend, for menu items of kind "route"
	s.routes["login"] = "/backend/login"
	s.routes["logout"] = "/backend/logout"

	return s
}

func (s *Site) route(name, pattern string, handle func(http.ResponseWriter, *http.Request, httprouter.Params)) {
	s.routes[name] = pattern
	s.router.GET(pattern, handle)
}

// ResolveRoute substitutes the :params of the named route's pattern.
// A parameter without a value is an error, the menu filter skips the item then.
func (s *Site) ResolveRoute(name string, params map[string]string) (string, error) {

	pattern, ok := s.routes[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}

	var segments = strings.Split(pattern, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		value, ok := params[segment[1:]]
		if !ok {
			return "", fmt.Errorf("route %q: no value for parameter %q", name, segment[1:])
		}
		segments[i] = value
	}

	return strings.Join(segments, "/"), nil
}

func (s *Site) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
		<title>{{ .Title }}</title>
		<style>{{ .CSS }}</style>
	</head>
	<body>
		<div class="menus">
			{{ range $name, $entries := .Menus }}
				{{ if $entries }}
					<div class="menu">
						<h3>{{ $name }}</h3>
						{{ range $entries }}<a href="{{ .Href }}">{{ .Label }}</a>{{ if not .Last }} &middot; {{ end }}{{ end }}
					</div>
				{{ end }}
			{{ end }}
		</div>
		<div class="content">
			{{ .Notifications }}
			{{ .Body }}
		</div>
	</body>
</html>`))

type pageData struct {
	Title         string
	CSS           template.CSS
	Menus         map[string][]core.MenuEntry
	Notifications template.HTML
	Body          template.HTML
}

// menuNames are the menu groups rendered on every page, in the shipped seed.
var menuNames = []string{"main_menu", "user_area", "admin_area"}

func (s *Site) renderPage(w http.ResponseWriter, req *core.Request, body template.HTML) {

	title, err := s.db.GetSettingOr("TITLE", "Untitled Website")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	css, err := s.db.GetSettingOr("CSS", "")
	if err != nil {
		// render without styling rather than failing the page
		log.Printf("error loading CSS setting: %v", err)
	}

	var tmplArgs = map[string]string{}
	if req.LoggedIn() {
		tmplArgs["username"] = req.User.Name()
	}

	var data = pageData{
		Title:         title,
		CSS:           template.CSS(css),
		Menus:         make(map[string][]core.MenuEntry),
		Notifications: req.RenderNotifications(),
		Body:          body,
	}
	for _, name := range menuNames {
		data.Menus[name] = req.FilteredMenu(name, tmplArgs)
	}

	if err := pageTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Site) home(w http.ResponseWriter, httpreq *http.Request, _ httprouter.Params) {
	s.serveArticle(w, httpreq, HomeSlug)
}

var indexTmpl = template.Must(template.New("index").Parse(`{{ range . }}
	<article>
		{{ .Teaser }}
		{{ if .More }}<p><a href="article/{{ .Slug }}">more</a></p>{{ end }}
	</article>
{{ else }}
	<p>No articles yet.</p>
{{ end }}`))

type indexEntry struct {
	Slug   string
	Teaser template.HTML
	More   bool
}

func (s *Site) articles(w http.ResponseWriter, httpreq *http.Request, _ httprouter.Params) {

	var req = s.db.NewRequest(w, httpreq)
	defer req.Cleanup()

	articles, err := s.db.GetAllArticles(100, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var entries []indexEntry
	for _, article := range articles {
		head, err := s.db.Head(article)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if head == nil {
			continue
		}
		teaser, more := util.CutMore(head.Content())
		entries = append(entries, indexEntry{
			Slug:   article.Slug(),
			Teaser: template.HTML(commonMark.RenderToString([]byte(teaser))),
			More:   more,
		})
	}

	var body strings.Builder
	if err := indexTmpl.Execute(&body, entries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderPage(w, req, template.HTML(body.String()))
}

func (s *Site) article(w http.ResponseWriter, httpreq *http.Request, params httprouter.Params) {
	s.serveArticle(w, httpreq, params.ByName("slug"))
}

func (s *Site) serveArticle(w http.ResponseWriter, httpreq *http.Request, slug string) {

	var req = s.db.NewRequest(w, httpreq)
	defer req.Cleanup()

	article, err := s.db.GetArticle(core.NormalizeSlug(slug))
	if err == sql.ErrNoRows {
		http.NotFound(w, httpreq)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	head, err := s.db.Head(article)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var body template.HTML
	if head != nil {
		body = template.HTML(commonMark.RenderToString([]byte(head.Content())))
	}

	s.renderPage(w, req, body)
}
