package core

import (
	"fmt"
	"strings"
)

type DBArticle interface {
	ID() int
	Slug() string
	MaxRevisionNo() int // 0 if the article has no revisions yet
}

type DBRevision interface {
	ArticleID() int
	No() int
	Content() string
	Note() string
	TsChanged() int64
}

type ArticleDB interface {
	GetArticle(slug string) (DBArticle, error)
	GetAllArticles(limit, offset int) ([]DBArticle, error)
	InsertArticle(slug string) (DBArticle, error)
	DeleteArticle(a DBArticle) error // deletes the revisions along with the article
	GetRevision(a DBArticle, no int) (DBRevision, error)
	GetRevisions(a DBArticle) ([]DBRevision, error) // newest first
	AddRevision(a DBArticle, content, note string) error
}

// NormalizeSlug lowercases the slug and replaces spaces.
func NormalizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	return strings.ReplaceAll(slug, " ", "-")
}

// Edit adds a revision to the article if the content has changed.
func (c *CoreDB) Edit(a DBArticle, v DBRevision, newContent, newNote, username string) error {
	if v != nil && v.Content() == newContent {
		return nil
	}
	return c.ArticleDB.AddRevision(a, newContent, fmt.Sprintf("[%s] %s", username, strings.TrimSpace(newNote)))
}

// Revert makes the given revision the head again by re-adding its content.
func (c *CoreDB) Revert(a DBArticle, no int, username string) error {
	v, err := c.ArticleDB.GetRevision(a, no)
	if err != nil {
		return err
	}
	return c.ArticleDB.AddRevision(a, v.Content(), fmt.Sprintf("[%s] reverted to #%d", username, no))
}

// Head returns the latest revision of the article, or nil if there is none.
func (c *CoreDB) Head(a DBArticle) (DBRevision, error) {
	if a.MaxRevisionNo() == 0 {
		return nil, nil
	}
	return c.ArticleDB.GetRevision(a, a.MaxRevisionNo())
}
