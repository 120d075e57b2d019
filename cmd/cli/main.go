// Command taskctl is a CLI client for the Taskhub API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/taskhub/internal/client"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	UserID      int64     `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

var errLoginRequired = errors.New("no valid token (login required)")

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "taskhub")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taskhub")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, userID int64, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, UserID: userID, ExpiresAt: exp})
}

func loadToken() (tokenFile, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tokenFile{}, errLoginRequired
		}
		return tokenFile{}, err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return tokenFile{}, err
	}
	if tf.AccessToken == "" || tf.UserID <= 0 || time.Now().After(tf.ExpiresAt) {
		return tokenFile{}, errLoginRequired
	}
	return tf, nil
}

func removeToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// tokenExpiry reads exp from the token without verifying it; the server is the judge.
func tokenExpiry(tok string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(tok, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}

// ---- utils ----

var stdout io.Writer = os.Stdout

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

const usageText = `taskctl CLI
Usage:
  taskctl [-addr URL] <cmd> [args]

Commands:
  version
  register     -email <e> -password <p> -name <n>
  login        -email <e> -password <p>              (saves token)
  logout                                             (forgets token)
  whoami
  health
  tasks
  task-add     -title <t> [-desc d] [-due YYYY-MM-DD] [-priority p] [-status s] [-category id] [-sub "a;b"]
  task-show    -id <id>
  task-edit    -id <id> [-title t] [-desc d] [-due date] [-priority p] [-status s] [-category id] [-sub "a;b"]
  task-done    -id <id>
  task-rm      -id <id>
  categories
  category-add -name <n> [-desc d] [-color #rrggbb]
  category-edit -id <id> [-name n] [-desc d] [-color c]
  category-rm  -id <id>
  notes
  note-add     -title <t> [-content c | -file path|-]
  note-edit    -id <id> [-title t] [-content c | -file path|-]
  note-rm      -id <id>
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

var errUsage = errors.New("usage")

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := run(ctx, os.Args[1:])
	if errors.Is(err, errUsage) {
		usage()
	}
	if err != nil {
		fail(err)
	}
}

// run parses global flags and dispatches the subcommand.
func run(ctx context.Context, args []string) error {
	gfs := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	defaultAddr := "http://localhost:4000"
	if v := os.Getenv("TASKHUB_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := gfs.String("addr", defaultAddr, "server base URL")
	gfs.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	if err := gfs.Parse(args); err != nil {
		return errUsage
	}
	if gfs.NArg() < 1 {
		return errUsage
	}
	cmd, rest := gfs.Arg(0), gfs.Args()[1:]

	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "taskctl %s (%s)\n", version, buildDate)
		return nil
	case "register":
		return cmdRegister(ctx, *addr, rest)
	case "login":
		return cmdLogin(ctx, *addr, rest)
	case "logout":
		return cmdLogout(ctx, *addr)
	case "health":
		c, err := client.New(*addr)
		if err != nil {
			return err
		}
		if err := c.Health(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "ok")
		return nil
	}

	h, ok := authed[cmd]
	if !ok {
		return errUsage
	}
	tf, err := loadToken()
	if err != nil {
		return err
	}
	c, err := client.New(*addr, client.WithToken(tf.AccessToken))
	if err != nil {
		return err
	}
	err = h(ctx, c, tf.UserID, rest)
	if client.IsUnauthorized(err) {
		_ = removeToken()
		return fmt.Errorf("%w; saved token dropped, login again", err)
	}
	return err
}

func cmdRegister(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" || *name == "" {
		return errors.New("need -email, -password and -name")
	}
	c, err := client.New(addr)
	if err != nil {
		return err
	}
	sess, err := c.Register(ctx, registerInput(*email, *password, *name))
	if err != nil {
		return err
	}
	printJSON(sess.User)
	return nil
}

func cmdLogin(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("need -email and -password")
	}
	c, err := client.New(addr)
	if err != nil {
		return err
	}
	sess, err := c.Login(ctx, loginInput(*email, *password))
	if err != nil {
		return err
	}
	exp := sess.ExpiresAt
	if exp.IsZero() {
		exp = tokenExpiry(sess.AccessToken, time.Now().Add(time.Hour))
	}
	if err := saveToken(sess.AccessToken, sess.User.ID, exp); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func cmdLogout(ctx context.Context, addr string) error {
	if c, err := client.New(addr); err == nil {
		_ = c.Logout(ctx)
	}
	if err := removeToken(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

// ---- helpers ----

func fail(err error) {
	var ae *client.APIError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: %s\n", ae.Error())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
