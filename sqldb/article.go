package sqldb

import (
	"database/sql"
	"time"

	"github.com/wansing/vantage/core"
)

type article struct {
	id    int
	slug  string
	maxNo int
}

func (a *article) ID() int {
	return a.id
}

func (a *article) Slug() string {
	return a.slug
}

func (a *article) MaxRevisionNo() int {
	return a.maxNo
}

type revision struct {
	articleID int
	no        int
	content   string
	note      string
	tsChanged int64
}

func (v *revision) ArticleID() int   { return v.articleID }
func (v *revision) No() int          { return v.no }
func (v *revision) Content() string  { return v.content }
func (v *revision) Note() string     { return v.note }
func (v *revision) TsChanged() int64 { return v.tsChanged }

type ArticleDB struct {
	*sql.DB
	delete          *sql.Stmt
	deleteRevisions *sql.Stmt
	get             *sql.Stmt
	getAll          *sql.Stmt
	getRevision     *sql.Stmt
	getRevisions    *sql.Stmt
	insert          *sql.Stmt
	insertRevision  *sql.Stmt
}

func NewArticleDB(db *sql.DB) *ArticleDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS article (
			id INTEGER PRIMARY KEY,
			slug varchar(64) NOT NULL,
			UNIQUE(slug)
		);
		CREATE TABLE IF NOT EXISTS revision (
			articleId int(11) NOT NULL,
			no int(11) NOT NULL,
			content text NOT NULL,
			note varchar(128) NOT NULL DEFAULT '',
			tsChanged int(11) NOT NULL,
			PRIMARY KEY (articleId, no)
		);`)

	var articleDB = &ArticleDB{}
	articleDB.DB = db
	articleDB.delete = mustPrepare(db, "DELETE FROM article WHERE id = ?")
	articleDB.deleteRevisions = mustPrepare(db, "DELETE FROM revision WHERE articleId = ?")
	articleDB.get = mustPrepare(db, "SELECT article.id, COALESCE(MAX(revision.no), 0) FROM article LEFT JOIN revision ON revision.articleId = article.id WHERE article.slug = ? GROUP BY article.id")
	articleDB.getAll = mustPrepare(db, "SELECT article.id, article.slug, COALESCE(MAX(revision.no), 0) FROM article LEFT JOIN revision ON revision.articleId = article.id GROUP BY article.id ORDER BY article.slug LIMIT ? OFFSET ?")
	articleDB.getRevision = mustPrepare(db, "SELECT content, note, tsChanged FROM revision WHERE articleId = ? AND no = ? LIMIT 1")
	articleDB.getRevisions = mustPrepare(db, "SELECT no, content, note, tsChanged FROM revision WHERE articleId = ? ORDER BY no DESC")
	articleDB.insert = mustPrepare(db, "INSERT INTO article (slug) VALUES (?)")
	articleDB.insertRevision = mustPrepare(db, "INSERT INTO revision (articleId, no, content, note, tsChanged) VALUES (?, ?, ?, ?, ?)")
	return articleDB
}

func (db *ArticleDB) GetArticle(slug string) (core.DBArticle, error) {
	var a = &article{
		slug: slug,
	}
	return a, db.get.QueryRow(slug).Scan(&a.id, &a.maxNo)
}

func (db *ArticleDB) GetAllArticles(limit, offset int) ([]core.DBArticle, error) {

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.DBArticle{}
	for rows.Next() {
		var a = &article{}
		if err = rows.Scan(&a.id, &a.slug, &a.maxNo); err != nil {
			return nil, err
		}
		all = append(all, a)
	}
	return all, nil
}

func (db *ArticleDB) InsertArticle(slug string) (core.DBArticle, error) {

	res, err := db.insert.Exec(slug)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &article{
		id:   int(id),
		slug: slug,
	}, nil
}

// DeleteArticle deletes the article and its revisions in one transaction.
func (db *ArticleDB) DeleteArticle(a core.DBArticle) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.deleteRevisions).Exec(a.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Stmt(db.delete).Exec(a.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *ArticleDB) GetRevision(a core.DBArticle, no int) (core.DBRevision, error) {
	var v = &revision{
		articleID: a.ID(),
		no:        no,
	}
	return v, db.getRevision.QueryRow(a.ID(), no).Scan(&v.content, &v.note, &v.tsChanged)
}

func (db *ArticleDB) GetRevisions(a core.DBArticle) ([]core.DBRevision, error) {

	rows, err := db.getRevisions.Query(a.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.DBRevision{}
	for rows.Next() {
		var v = &revision{
			articleID: a.ID(),
		}
		if err = rows.Scan(&v.no, &v.content, &v.note, &v.tsChanged); err != nil {
			return nil, err
		}
		all = append(all, v)
	}
	return all, nil
}

func (db *ArticleDB) AddRevision(a core.DBArticle, content, note string) error {

	var no = a.MaxRevisionNo() + 1

	_, err := db.insertRevision.Exec(a.ID(), no, content, note, time.Now().Unix())
	if err != nil {
		return err
	}

	if a, ok := a.(*article); ok {
		a.maxNo = no
	}
	return nil
}
