// Package taskctl консольный клиент трекера задач.
package taskctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/magabrotheeeer/tasktracker/internal/client"
)

// ErrSessionExpired сервер отклонил сохранённую сессию.
var ErrSessionExpired = errors.New("session expired, please log in again")

// Runner собирает приложение командной строки поверх потоков ввода и вывода.
type Runner struct {
	In  io.Reader
	Out io.Writer
	// ReadPassword читает пароль без эха. nil: терминал, если stdin им является, иначе строка из In.
	ReadPassword func() ([]byte, error)

	lines *bufio.Reader
}

// New создаёт Runner для стандартных потоков процесса.
func New() *Runner {
	return &Runner{In: os.Stdin, Out: os.Stdout}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "taskctl", "session.json")
}

// App возвращает дерево команд.
func (r *Runner) App() *cli.App {
	return &cli.App{
		Name:      "taskctl",
		Usage:     "Manage your task list from the terminal",
		Writer:    r.Out,
		ErrWriter: r.Out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Task tracker API address",
				Value:   "http://localhost:8080",
				EnvVars: []string{"TASKCTL_SERVER"},
			},
			&cli.StringFlag{
				Name:    "session",
				Usage:   "File with the saved session",
				Value:   defaultSessionPath(),
				EnvVars: []string{"TASKCTL_SESSION"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "HTTP request timeout",
				Value: 10 * time.Second,
			},
		},
		Commands: []*cli.Command{
			r.registerCmd(),
			r.loginCmd(),
			r.logoutCmd(),
			r.whoamiCmd(),
			r.tasksCmd(),
		},
	}
}

// session загружает сохранённую сессию и клиент для её сервера.
func (r *Runner) session(c *cli.Context) (*client.Client, *client.Session, error) {
	s, err := client.LoadSession(c.String("session"))
	if err != nil {
		return nil, nil, err
	}
	server := c.String("server")
	if !c.IsSet("server") && s.Server != "" {
		server = s.Server
	}
	api := client.New(server, c.Duration("timeout"))
	api.SetToken(s.Token)
	return api, s, nil
}

// forgetExpired удаляет файл сессии, если клиент потерял токен после ответа 401.
func (r *Runner) forgetExpired(c *cli.Context, api *client.Client, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrNotLoggedIn) {
		return errors.New("not logged in, run: taskctl login")
	}
	if errors.Is(err, client.ErrUnauthorized) && api.Token() == "" {
		if rmErr := client.RemoveSession(c.String("session")); rmErr != nil {
			return rmErr
		}
		return ErrSessionExpired
	}
	return err
}

func (r *Runner) readLine() (string, error) {
	if r.lines == nil {
		r.lines = bufio.NewReader(r.In)
	}
	line, err := r.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Runner) password() (string, error) {
	fmt.Fprint(r.Out, "Password: ")
	var (
		pw  []byte
		err error
	)
	switch {
	case r.ReadPassword != nil:
		pw, err = r.ReadPassword()
	case r.In == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())):
		pw, err = term.ReadPassword(int(os.Stdin.Fd()))
	default:
		var line string
		line, err = r.readLine()
		pw = []byte(line)
	}
	fmt.Fprintln(r.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(pw), nil
}
