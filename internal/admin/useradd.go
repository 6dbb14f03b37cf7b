// Package admin implements the operator commands of the gophauth CLI.
package admin

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"golang.org/x/term"
)

// test seams for the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// UserAddOptions are the parsed arguments of "useradd".
type UserAddOptions struct {
	DatabaseDSN string
	Email       string
	UserName    string
	Roles       []string
}

// Registrar creates users.
type Registrar interface {
	Register(ctx context.Context, email, userName, password string, roles []string) (*models.User, error)
}

// ParseUserAdd parses "useradd" arguments. The DSN falls back to
// GOPHAUTH_DATABASE_DSN.
func ParseUserAdd(args []string) (*UserAddOptions, error) {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	o := &UserAddOptions{}
	var roles string
	fs.StringVar(&o.DatabaseDSN, "d", os.Getenv("GOPHAUTH_DATABASE_DSN"), "database DSN")
	fs.StringVar(&o.Email, "email", "", "user email")
	fs.StringVar(&o.UserName, "username", "", "display name")
	fs.StringVar(&roles, "roles", "", "comma-separated roles")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if o.DatabaseDSN == "" {
		return nil, errors.New("database DSN is required (-d)")
	}
	if o.Email == "" {
		return nil, errors.New("email is required (-email)")
	}

	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			o.Roles = append(o.Roles, r)
		}
	}
	return o, nil
}

// ReadPassword reads a password from the terminal without echo, or the
// first line of in when in is not a terminal.
func ReadPassword(in *os.File, w io.Writer) (string, error) {
	fd := int(in.Fd())
	if !isTerminal(fd) {
		return readLine(in)
	}

	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AddUser registers the user described by o.
func AddUser(ctx context.Context, reg Registrar, o *UserAddOptions, password string) (*models.User, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}
	u, err := reg.Register(ctx, o.Email, o.UserName, password, o.Roles)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("add user %s: %w", o.Email, err)
		}
		return nil, err
	}
	return u, nil
}

// RunUserAdd is the "useradd" command: it opens the database, applies
// migrations and creates the user.
func RunUserAdd(ctx context.Context, args []string, in *os.File, w io.Writer) error {
	o, err := ParseUserAdd(args)
	if err != nil {
		return err
	}

	password, err := ReadPassword(in, w)
	if err != nil {
		return err
	}

	repos, err := repomanager.New(ctx, repomanager.Options{DatabaseDSN: o.DatabaseDSN})
	if err != nil {
		return err
	}
	defer repos.Close()

	if err := repos.RunMigrations(ctx); err != nil {
		return err
	}

	u, err := AddUser(ctx, services.NewDirectory(repos.Users()), o, password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "created user %s (%s)\n", u.Email, u.ID)
	return err
}
