package taskctl

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/magabrotheeeer/tasktracker/internal/client"
)

func usernameFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "username",
		Aliases:     []string{"u"},
		Usage:       "Account name",
		Required:    true,
		Destination: dest,
	}
}

func (r *Runner) registerCmd() *cli.Command {
	var username string
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account (password is prompted)",
		Flags: []cli.Flag{usernameFlag(&username)},
		Action: func(c *cli.Context) error {
			pw, err := r.password()
			if err != nil {
				return err
			}
			api, _, err := r.session(c)
			if err != nil {
				return err
			}
			id, err := api.Register(c.Context, username, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.Out, "Registered %s (id %s). Now run: taskctl login -u %s\n", username, id, username)
			return nil
		},
	}
}

func (r *Runner) loginCmd() *cli.Command {
	var username string
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and save the session",
		Flags: []cli.Flag{usernameFlag(&username)},
		Action: func(c *cli.Context) error {
			pw, err := r.password()
			if err != nil {
				return err
			}
			api := client.New(c.String("server"), c.Duration("timeout"))
			identity, err := api.Login(c.Context, username, pw)
			if err != nil {
				return err
			}
			s := &client.Session{Server: api.BaseURL(), Username: identity.Username, Token: api.Token()}
			if err := s.Save(c.String("session")); err != nil {
				return err
			}
			fmt.Fprintf(r.Out, "Logged in as %s\n", identity.Username)
			return nil
		},
	}
}

func (r *Runner) logoutCmd() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the saved session",
		Action: func(c *cli.Context) error {
			api, _, err := r.session(c)
			if err != nil {
				return err
			}
			logoutErr := api.Logout(c.Context)
			if err := client.RemoveSession(c.String("session")); err != nil {
				return err
			}
			if logoutErr != nil {
				fmt.Fprintf(r.Out, "Session removed locally, server did not confirm: %v\n", logoutErr)
				return nil
			}
			fmt.Fprintln(r.Out, "Logged out")
			return nil
		},
	}
}

func (r *Runner) whoamiCmd() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Action: func(c *cli.Context) error {
			api, _, err := r.session(c)
			if err != nil {
				return err
			}
			identity, err := api.Me(c.Context)
			if err != nil {
				return r.forgetExpired(c, api, err)
			}
			fmt.Fprintf(r.Out, "%s (id %s)\n", identity.Username, identity.UserID)
			return nil
		},
	}
}
