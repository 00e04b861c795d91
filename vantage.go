package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wansing/vantage/backend"
	"github.com/wansing/vantage/core"
	"github.com/wansing/vantage/site"
	"github.com/wansing/vantage/sqldb"
	"github.com/wansing/vantage/sqldb/mysql"
	"github.com/wansing/vantage/sqldb/sqlite3"
	"github.com/wansing/vantage/util"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

type prefixedResponseWriter struct {
	http.ResponseWriter
	prefix string // without trailing slash
}

// shadows the original WriteHeader func
func (w prefixedResponseWriter) WriteHeader(statusCode int) {
	// prepend prefix to Location header, so redirects work
	if w.prefix != "" {
		if location := w.Header().Get("Location"); len(location) > 0 && location[0] == '/' { // only absolute locations
			w.Header().Set("Location", w.prefix+location)
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// prefix should be without trailing slash
func handleStrip(prefix string, handler http.Handler) {
	http.Handle(
		prefix+"/", // http mux needs trailing slash
		http.StripPrefix(
			prefix,
			http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					w = &prefixedResponseWriter{w, prefix}
					handler.ServeHTTP(w, r)
				},
			),
		),
	)
}

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

const defaultDBArg = "sqlite3:vantage.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	var base = flag.String("base", "", "strip off this `prefix` from every HTTP request and prepend it to every link")
	var configArg = flag.String("config", "", "read flag values from this ini `file` in the config folder")
	// MySQL: collation should be utf8mb4_unicode_ci
	flag.StringVar(&dbArg, "db", defaultDBArg, "sql database url, see github.com/xo/dburl")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", defaultDBArg, "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given group or user")
	var initJoin = initFlags.Bool("join", false, "joins the given user to the given group")
	var initMakeAdmin = initFlags.Bool("make-admin", false, "gives admin permissions to the given group")
	var initSeed = initFlags.Bool("seed", false, "creates the default menus, settings and home page")
	var groupname = initFlags.String("group", "", "specifies a group `name`")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// config file values override flag defaults but not explicit flags

	if *configArg != "" {
		config, err := util.Ini(*configArg)
		if err != nil {
			log.Printf("could not read config: %v", err)
			return
		}
		var given = make(map[string]bool)
		flag.Visit(func(f *flag.Flag) {
			given[f.Name] = true
		})
		for name, value := range config {
			if !given[name] {
				if err := flag.Set(name, value); err != nil {
					log.Printf("could not apply config value %s: %v", name, err)
					return
				}
			}
		}
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	db := &core.CoreDB{}
	db.ArticleDB = sqldb.NewArticleDB(sqlDB)
	db.GroupDB = sqldb.NewGroupDB(sqlDB)
	db.MenuDB = sqldb.NewMenuDB(sqlDB)
	db.SettingsDB = sqldb.NewSettingsDB(sqlDB)
	db.UserDB = sqldb.NewUserDB(sqlDB)
	db.SqlDB = sqlDB

	err = db.Init(sessionStore, *base)
	if err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsert:
			if *groupname != "" {
				insertGroup(db, *groupname)
			}
			if *username != "" {
				insertUser(db, *username)
			}
		case *initJoin:
			if *groupname != "" && *username != "" {
				join(db, *groupname, *username)
			}
		case *initMakeAdmin:
			if *groupname != "" {
				makeAdmin(db, *groupname)
			}
		case *initSeed:
			seed(db)
		}
		return
	}

	listen(db, *listenAddr, *base)
}

func insertGroup(db *core.CoreDB, name string) {
	if _, err := db.InsertGroup(name); err != nil {
		log.Printf(`error creating group "%s": %v`, name, err)
	}
}

func insertUser(db *core.CoreDB, name string) {

	var password string

	fmt.Printf("password for user %s: ", name)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err == nil {
		fmt.Printf("repeat password: ")
		pass2, err := terminal.ReadPassword(0)
		fmt.Println()
		if err != nil {
			log.Printf("error reading password: %v", err)
			return
		}
		if !bytes.Equal(pass1, pass2) {
			log.Printf("passwords don't match")
			return
		}
		password = string(pass1)
	} else {
		// stdin is not a terminal, generate a password
		password, err = util.RandomString32()
		if err != nil {
			log.Printf("error generating password: %v", err)
			return
		}
		fmt.Printf("generated password: %s\n", password)
	}

	user, err := db.InsertUser(name)
	if err != nil {
		log.Printf("error creating user %s: %v", name, err)
		return
	}

	if err := db.SetPassword(user, password); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func join(db *core.CoreDB, groupname string, username string) {

	group, err := db.GetGroupByName(groupname)
	if err != nil {
		log.Printf("error getting group %s: %v", groupname, err)
		return
	}

	user, err := db.GetUserByName(username)
	if err != nil {
		log.Printf("error getting user %s: %v", username, err)
		return
	}

	if err := db.Join(group, user); err != nil {
		log.Printf("error joining: %v", err)
		return
	}
}

func makeAdmin(db *core.CoreDB, groupname string) {

	if _, err := db.GetGroupByName(groupname); err != nil {
		log.Printf("error getting group %s: %v", groupname, err)
		return
	}

	if err := db.ACL.Add(core.AdminRules(groupname)...); err != nil {
		log.Printf("error giving admin permissions to group: %v", err)
		return
	}
}

// seed creates the default access rules, settings, menus and home page of
// a fresh installation. Existing rows are kept.
func seed(db *core.CoreDB) {

	if len(db.ACL.Snapshot()) == 0 {
		if err := db.ACL.ReplaceAll(core.DefaultRules()); err != nil {
			log.Printf("error seeding access rules: %v", err)
			return
		}
	}

	var settings = map[string]string{
		"TITLE": "Untitled Website",
		"CSS":   "",
	}
	for name, value := range settings {
		if _, err := db.GetSetting(name); err == nil {
			continue
		}
		if err := db.SetSetting(name, value); err != nil {
			log.Printf("error seeding setting %s: %v", name, err)
			return
		}
	}

	var menus = map[string][]core.MenuItemData{
		"main_menu": {
			{Name: "Home", Route: "home", Position: 1},
		},
		"user_area": {
			{Name: "Login", Route: "login", Position: 1, Permissions: string(core.NotAuthenticated)},
			{Name: "Logout {username}", Route: "logout", Position: 2, Permissions: string(core.Authenticated)},
		},
		"admin_area": {
			{Name: "Edit Menus", URL: "/backend/menus", Position: 1, Permissions: string(core.PermEditMenu)},
			{Name: "Edit ACL", URL: "/backend/acl", Position: 2, Permissions: string(core.PermEditACL)},
			{Name: "Edit Settings", URL: "/backend/settings", Position: 3, Permissions: string(core.PermEditSettings)},
			{Name: "Manage Users", URL: "/backend/users", Position: 4, Permissions: string(core.GroupToken("admin"))},
		},
	}
	for name, items := range menus {
		if _, err := db.GetMenuGroup(name); err == nil {
			continue
		}
		group, err := db.InsertMenuGroup(name)
		if err != nil {
			log.Printf("error seeding menu group %s: %v", name, err)
			return
		}
		for _, item := range items {
			if err := db.InsertMenuItem(group, item); err != nil {
				log.Printf("error seeding menu %s: %v", name, err)
				return
			}
		}
	}

	if _, err := db.GetArticle(site.HomeSlug); err != nil {
		article, err := db.InsertArticle(site.HomeSlug)
		if err != nil {
			log.Printf("error seeding home page: %v", err)
			return
		}
		if err := db.AddRevision(article, "# Welcome\n\nEdit this page in the backend.", "[init] seed"); err != nil {
			log.Printf("error seeding home page: %v", err)
			return
		}
	}
}

func listen(db *core.CoreDB, addr string, base string) {

	// mux
	//
	// golang mux recovers from panics, so the program won't crash

	var frontend = site.New(db)
	db.Routes = frontend

	handleStrip(base+"/backend", backend.NewBackendRouter(db, base))
	handleStrip(base+"/static", http.FileServer(http.Dir("static")))
	handleStrip(base, frontend)

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(http.DefaultServeMux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
