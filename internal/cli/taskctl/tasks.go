package taskctl

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/magabrotheeeer/tasktracker/internal/client"
	"github.com/magabrotheeeer/tasktracker/internal/models"
	"github.com/magabrotheeeer/tasktracker/internal/tasklist"
)

const displayDateLayout = "Jan 2, 2006"

// withState загружает список задач текущего пользователя и вызывает fn.
func (r *Runner) withState(fn func(c *cli.Context, s *tasklist.State) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		api, _, err := r.session(c)
		if err != nil {
			return err
		}
		s := tasklist.New(api)
		if err := s.Load(c.Context); err != nil {
			return r.forgetExpired(c, api, err)
		}
		return r.forgetExpired(c, api, fn(c, s))
	}
}

func taskID(c *cli.Context) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", errors.New("task id is required")
	}
	return id, nil
}

func (r *Runner) tasksCmd() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Work with your task list",
		Subcommands: []*cli.Command{
			r.listCmd(),
			r.addCmd(),
			r.editCmd(),
			r.completeCmd("done", "Mark a task as completed", true),
			r.completeCmd("undo", "Mark a task as pending again", false),
			r.removeCmd(),
			r.statsCmd(),
		},
	}
}

func (r *Runner) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Show tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "all, pending or completed", Value: string(tasklist.FilterAll)},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Case-insensitive text in title or description"},
		},
		Action: r.withState(func(c *cli.Context, s *tasklist.State) error {
			f, err := tasklist.ParseFilter(c.String("filter"))
			if err != nil {
				return err
			}
			s.SetFilter(f)
			s.SetSearch(c.String("search"))

			visible := s.Visible()
			if len(visible) == 0 {
				fmt.Fprintln(r.Out, "No tasks found. Try adjusting your filters or add a new task!")
				return nil
			}
			printTasks(r.Out, visible)
			return nil
		}),
	}
}

func (r *Runner) addCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a task",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
			&cli.StringFlag{Name: "deadline", Usage: "YYYY-MM-DD", Required: true},
		},
		Action: r.withState(func(c *cli.Context, s *tasklist.State) error {
			task, err := s.Add(c.Context, tasklist.Draft{
				Title:       c.String("title"),
				Description: c.String("description"),
				Deadline:    c.String("deadline"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(r.Out, "Created %s\n", task.ID)
			return nil
		}),
	}
}

func (r *Runner) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change title, description or deadline of a task",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
			&cli.StringFlag{Name: "deadline", Usage: "YYYY-MM-DD"},
		},
		Action: r.withState(func(c *cli.Context, s *tasklist.State) error {
			id, err := taskID(c)
			if err != nil {
				return err
			}
			draft, err := s.BeginEdit(id)
			if err != nil {
				return err
			}
			if c.IsSet("title") {
				draft.Title = c.String("title")
			}
			if c.IsSet("description") {
				draft.Description = c.String("description")
			}
			if c.IsSet("deadline") {
				draft.Deadline = c.String("deadline")
			}
			task, err := s.Submit(c.Context, draft)
			if err != nil {
				return explainConflict(err)
			}
			fmt.Fprintf(r.Out, "Updated %s\n", task.ID)
			return nil
		}),
	}
}

func (r *Runner) completeCmd(name, usage string, completed bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "ID",
		Action: r.withState(func(c *cli.Context, s *tasklist.State) error {
			id, err := taskID(c)
			if err != nil {
				return err
			}
			task, err := s.SetCompleted(c.Context, id, completed)
			if err != nil {
				return explainConflict(err)
			}
			fmt.Fprintf(r.Out, "%s is now %s\n", task.ID, status(task))
			return nil
		}),
	}
}

func (r *Runner) removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		ArgsUsage: "ID",
		Action: r.withState(func(c *cli.Context, s *tasklist.State) error {
			id, err := taskID(c)
			if err != nil {
				return err
			}
			if err := s.Remove(c.Context, id); err != nil {
				return explainConflict(err)
			}
			fmt.Fprintf(r.Out, "Deleted %s\n", id)
			return nil
		}),
	}
}

func (r *Runner) statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count tasks by status",
		Action: r.withState(func(_ *cli.Context, s *tasklist.State) error {
			st := s.Stats()
			fmt.Fprintf(r.Out, "Total: %d\nPending: %d\nCompleted: %d\n", st.Total, st.Pending, st.Completed)
			return nil
		}),
	}
}

func explainConflict(err error) error {
	if errors.Is(err, client.ErrConflict) {
		return fmt.Errorf("task was changed elsewhere, list again and retry: %w", err)
	}
	return err
}

func status(t models.Task) string {
	if t.Completed {
		return "completed"
	}
	return "pending"
}

func printTasks(out io.Writer, tasks []models.Task) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tDUE\tTITLE\tDESCRIPTION")
	for _, t := range tasks {
		due := t.Deadline
		if d, ok := t.DeadlineTime(); ok {
			due = d.Format(displayDateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, status(t), due, t.Title, t.Description)
	}
	w.Flush()
}
