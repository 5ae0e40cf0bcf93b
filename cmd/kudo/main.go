// ABOUTME: CLI entrypoint for kudo with TUI, web server, export, and login modes.
// ABOUTME: Wires together the API client, local store, ordering engine surfaces, and config.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kudohq/kudo/api"
	"github.com/kudohq/kudo/board"
	"github.com/kudohq/kudo/export"
	"github.com/kudohq/kudo/store"
	"github.com/kudohq/kudo/tui"
	"github.com/kudohq/kudo/web"
)

var version = "dev"

// cliConfig holds CLI configuration parsed from flags and positional arguments.
type cliConfig struct {
	webMode      bool
	bind         string
	apiURL       string
	dataDir      string
	exportFormat string
	login        bool
	logout       bool
	anonymous    bool
	verbose      bool
	showVersion  bool
	slug         string
}

func main() {
	loadDotEnv(".env")

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("kudo %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns a populated cliConfig.
func parseFlags() cliConfig {
	var cfg cliConfig

	fs := flag.NewFlagSet("kudo", flag.ContinueOnError)
	fs.BoolVar(&cfg.webMode, "web", false, "Start the local web server")
	fs.StringVar(&cfg.bind, "bind", "", "Web listen address (default: 127.0.0.1:8467)")
	fs.StringVar(&cfg.apiURL, "api-url", "", "Backend base URL")
	fs.StringVar(&cfg.dataDir, "data-dir", "", "Local state directory (default: $XDG_DATA_HOME/kudo)")
	fs.StringVar(&cfg.exportFormat, "export", "", "Export a board: yaml or markdown")
	fs.BoolVar(&cfg.login, "login", false, "Sign in with email and password")
	fs.BoolVar(&cfg.logout, "logout", false, "Forget the saved session")
	fs.BoolVar(&cfg.anonymous, "anonymous", false, "Ignore the saved session for this run")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if fs.NArg() > 0 {
		cfg.slug = fs.Arg(0)
	}

	return cfg
}

// run dispatches to the appropriate mode. Returns an exit code.
func run(cfg cliConfig) int {
	base, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if cfg.apiURL != "" {
		base.APIURL = cfg.apiURL
	}
	if cfg.dataDir != "" {
		base.DataDir = cfg.dataDir
	}
	if cfg.bind != "" {
		if err := validateBind(cfg.bind, base.AllowRemote); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		base.Bind = cfg.bind
	}

	st := openStore(base)
	if st != nil {
		defer st.Close()
	}

	tokens := func() string {
		if cfg.anonymous || st == nil {
			return ""
		}
		sess, ok, err := st.Session()
		if err != nil || !ok {
			return ""
		}
		return sess.Token
	}

	client := api.New(base.APIURL,
		api.WithTokenSource(tokens),
		api.WithUserAgent("kudo/"+version),
	)
	boards := api.NewBoardService(client)
	posts := api.NewPostService(client)
	auth := api.NewAuthService(client)

	if cfg.verbose {
		log.Printf("component=cli action=start api_url=%s bind=%s authed=%t",
			base.APIURL, base.Bind, tokens() != "")
	}

	switch {
	case cfg.login:
		return runLogin(auth, st)
	case cfg.logout:
		return runLogout(st)
	case cfg.webMode:
		return runWeb(base, boards, posts, auth, st, tokens)
	case cfg.exportFormat != "":
		return runExport(cfg, boards)
	case cfg.slug != "":
		return runTUI(base, cfg, boards, posts, auth, st, tokens)
	default:
		printHelp(os.Stderr, version)
		return 0
	}
}

// openStore opens the local state database, warning instead of failing so
// every mode still works without local state.
func openStore(base *kudoConfig) *store.Store {
	dataDir, err := resolveDataDir(base.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not resolve data dir: %v\n", err)
		return nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not create data dir: %v\n", err)
		return nil
	}
	st, err := store.Open(filepath.Join(dataDir, "kudo.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open local store: %v\n", err)
		return nil
	}
	return st
}

// currentUser resolves the signed-in user, or a zero User when anonymous.
func currentUser(auth *api.AuthService, tokens func() string) (api.User, bool) {
	if tokens() == "" {
		return api.User{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	user, err := auth.Me(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: saved session rejected, continuing anonymously: %v\n", err)
		return api.User{}, false
	}
	return user, true
}

// loginCredentials resolves sign-in credentials: KUDO_EMAIL and KUDO_PASSWORD
// when set, interactive prompts on in for whatever is missing.
func loginCredentials(in io.Reader) (string, string) {
	email := strings.TrimSpace(os.Getenv("KUDO_EMAIL"))
	password := strings.TrimSpace(os.Getenv("KUDO_PASSWORD"))
	if email != "" && password != "" {
		return email, password
	}

	reader := bufio.NewReader(in)
	if email == "" {
		fmt.Print("Email: ")
		line, _ := reader.ReadString('\n')
		email = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		line, _ := reader.ReadString('\n')
		password = strings.TrimSpace(line)
	}
	return email, password
}

func runLogin(auth *api.AuthService, st *store.Store) int {
	if st == nil {
		fmt.Fprintln(os.Stderr, "error: no local store to save the session in")
		return 1
	}

	email, password := loginCredentials(os.Stdin)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	token, user, err := auth.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: login failed: %v\n", err)
		return 1
	}

	if err := st.SaveSession(store.Session{Token: token, UserID: user.ID, UserName: user.Name}); err != nil {
		fmt.Fprintf(os.Stderr, "error: could not save session: %v\n", err)
		return 1
	}
	fmt.Printf("Signed in as %s\n", user.Name)
	return 0
}

func runLogout(st *store.Store) int {
	if st == nil {
		return 0
	}
	if err := st.ClearSession(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println("Signed out.")
	return 0
}

func runWeb(base *kudoConfig, boards *api.BoardService, posts *api.PostService, auth *api.AuthService, st *store.Store, tokens func() string) int {
	user, authed := currentUser(auth, tokens)

	srv, err := web.NewServer(web.Config{
		Addr:   base.Bind,
		Boards: boards,
		Posts:  posts,
		User:   user,
		Authed: authed,
		Store:  st,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	log.Printf("component=cli action=serve addr=http://%s", base.Bind)
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runExport(cfg cliConfig, boards *api.BoardService) int {
	if cfg.slug == "" {
		fmt.Fprintln(os.Stderr, "error: -export needs a board slug")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	b, posts, err := boards.GetBySlug(ctx, cfg.slug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	switch cfg.exportFormat {
	case "yaml":
		out, err := export.ExportYAML(b, posts, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Print(out)
	case "markdown", "md":
		fmt.Print(export.ExportMarkdown(b, posts, time.Now()))
	default:
		fmt.Fprintf(os.Stderr, "error: unknown export format %q (yaml or markdown)\n", cfg.exportFormat)
		return 1
	}
	return 0
}

func runTUI(base *kudoConfig, cfg cliConfig, boards *api.BoardService, posts *api.PostService, auth *api.AuthService, st *store.Store, tokens func() string) int {
	user, authed := currentUser(auth, tokens)

	model := tui.NewBoardModel(tui.Config{
		Slug:   cfg.slug,
		Boards: boards,
		Posts:  posts,
		UserID: user.ID,
		Authed: authed,
		Draft:  board.Draft{Author: base.DefaultAuthor},
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Keep whatever was typed in the compose form as a draft for next time.
	if m, ok := final.(tui.BoardModel); ok && st != nil {
		if eng := m.Engine(); eng != nil {
			draft := m.ComposeDraft()
			if strings.TrimSpace(draft.Message) != "" {
				if err := st.SaveDraft(eng.Board().ID, draft); err != nil {
					fmt.Fprintf(os.Stderr, "warning: could not save draft: %v\n", err)
				}
			}
		}
	}
	return 0
}
