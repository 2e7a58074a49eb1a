package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"ops-dashboard/client"
	"ops-dashboard/config"
	"ops-dashboard/utils"
)

var errNotLoggedIn = errors.New("not logged in, run opsctl login")

// savedSession is the token file. Server is kept so a token is never sent to
// a different backend.
type savedSession struct {
	Server    string    `json:"server"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *cli) loadSession() (*savedSession, error) {
	var s savedSession
	if err := utils.ReadJSON(c.tokenFile, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errNotLoggedIn
		}
		return nil, err
	}
	if s.Token == "" || s.Server != c.server {
		return nil, errNotLoggedIn
	}
	if !s.ExpiresAt.IsZero() && c.now().After(s.ExpiresAt) {
		return nil, errors.New("session expired, run opsctl login")
	}
	return &s, nil
}

// client returns an API client carrying the stored token.
func (c *cli) client() (*client.Client, error) {
	s, err := c.loadSession()
	if err != nil {
		return nil, err
	}
	return client.New(c.server, client.WithToken(s.Token), client.WithLogger(c.logger)), nil
}

func (c *cli) credentials(name string, args []string) (string, string, error) {
	flags := newFlagSet(name)
	email := flags.String("email", "", "account email")
	password := flags.String("password", config.GetEnv("OPS_PASSWORD", ""), "account password (or OPS_PASSWORD)")
	if _, err := parseFlags(flags, args, 0); err != nil {
		return "", "", err
	}

	reader := bufio.NewReader(c.in)
	if *email == "" {
		v, err := c.prompt(reader, "email: ")
		if err != nil {
			return "", "", err
		}
		*email = v
	}
	if *password == "" {
		v, err := c.prompt(reader, "password: ")
		if err != nil {
			return "", "", err
		}
		*password = v
	}
	return *email, *password, nil
}

func (c *cli) prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return line, nil
}

func (c *cli) storeSession(sess *client.Session) error {
	s := savedSession{
		Server:    c.server,
		Email:     sess.User.Email,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	}
	return utils.WriteJSON(c.tokenFile, s, 0o600)
}

func (c *cli) authenticate(ctx context.Context, name string, args []string,
	call func(*client.Client, context.Context, string, string) (*client.Session, error)) error {
	email, password, err := c.credentials(name, args)
	if err != nil {
		return err
	}

	api := client.New(c.server, client.WithLogger(c.logger))
	sess, err := call(api, ctx, email, password)
	if err != nil {
		return err
	}
	if err := c.storeSession(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(c.out, "signed in as %s\n", sess.User.Email)
	return nil
}

func (c *cli) signUp(ctx context.Context, args []string) error {
	return c.authenticate(ctx, "signup", args, (*client.Client).SignUp)
}

func (c *cli) login(ctx context.Context, args []string) error {
	return c.authenticate(ctx, "login", args, (*client.Client).SignIn)
}

func (c *cli) logout(ctx context.Context, _ []string) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	if err := api.SignOut(ctx); err != nil && !client.IsUnauthorized(err) {
		return err
	}
	if err := os.Remove(c.tokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	fmt.Fprintln(c.out, "signed out")
	return nil
}

func (c *cli) whoami(ctx context.Context, _ []string) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	user, err := api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n", user.Email, user.ID)
	if user.CalendarID != "" {
		fmt.Fprintf(c.out, "calendar: %s\n", user.CalendarID)
	}
	return nil
}
