package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/and161185/taskhub/internal/client"
	"github.com/and161185/taskhub/internal/model"
)

// authedCmd runs with a client that carries the saved token.
type authedCmd func(ctx context.Context, c *client.Client, userID int64, args []string) error

var authed = map[string]authedCmd{
	"whoami":        cmdWhoami,
	"tasks":         cmdTasks,
	"task-add":      cmdTaskAdd,
	"task-show":     cmdTaskShow,
	"task-edit":     cmdTaskEdit,
	"task-done":     cmdTaskDone,
	"task-rm":       cmdTaskRm,
	"categories":    cmdCategories,
	"category-add":  cmdCategoryAdd,
	"category-edit": cmdCategoryEdit,
	"category-rm":   cmdCategoryRm,
	"notes":         cmdNotes,
	"note-add":      cmdNoteAdd,
	"note-edit":     cmdNoteEdit,
	"note-rm":       cmdNoteRm,
}

func registerInput(email, password, name string) model.RegisterInput {
	return model.RegisterInput{Email: email, Password: password, Name: name}
}

func loginInput(email, password string) model.LoginInput {
	return model.LoginInput{Email: email, Password: password}
}

// given returns the names of flags set on the command line.
func given(fs *flag.FlagSet) map[string]bool {
	m := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { m[f.Name] = true })
	return m
}

// splitSubtasks turns "a;b" into subtask inputs. Empty input means no subtasks.
func splitSubtasks(s string) []model.SubtaskInput {
	out := []model.SubtaskInput{}
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, model.SubtaskInput{Title: part})
		}
	}
	return out
}

func idFlag(name string, args []string) (int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	raw := fs.String("id", "", "id")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *raw == "" {
		return 0, errors.New("need -id")
	}
	return parseID(*raw)
}

func cmdWhoami(ctx context.Context, c *client.Client, _ int64, _ []string) error {
	u, err := c.Me(ctx)
	if err != nil {
		return err
	}
	printJSON(u)
	return nil
}

// ---- tasks ----

type taskFlags struct {
	fs                                       *flag.FlagSet
	id                                       *string
	title, desc, due, priority, status, subs *string
	category                                 *int64
}

func newTaskFlags(name string, withID bool) *taskFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	tf := &taskFlags{fs: fs}
	if withID {
		tf.id = fs.String("id", "", "task id")
	}
	tf.title = fs.String("title", "", "title")
	tf.desc = fs.String("desc", "", "description")
	tf.due = fs.String("due", "", "due date (YYYY-MM-DD or RFC3339)")
	tf.priority = fs.String("priority", "", "low|medium|high")
	tf.status = fs.String("status", "", "todo|in_progress|done")
	tf.category = fs.Int64("category", 0, "category id")
	tf.subs = fs.String("sub", "", "subtasks separated by ; (replaces the list on edit)")
	return tf
}

// fields copies only the flags given on the command line.
func (tf *taskFlags) fields() client.TaskFields {
	set := given(tf.fs)
	var f client.TaskFields
	if set["title"] {
		f.Title = tf.title
	}
	if set["desc"] {
		f.Description = tf.desc
	}
	if set["due"] {
		f.DueDate = tf.due
	}
	if set["priority"] {
		f.Priority = tf.priority
	}
	if set["status"] {
		f.Status = tf.status
	}
	if set["category"] {
		f.CategoryID = tf.category
	}
	if set["sub"] {
		subs := splitSubtasks(*tf.subs)
		f.Subtasks = &subs
	}
	return f
}

func cmdTasks(ctx context.Context, c *client.Client, userID int64, _ []string) error {
	tasks, err := c.ListTasks(ctx, userID)
	if err != nil {
		return err
	}
	type row struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
		Due      string `json:"due,omitempty"`
		Category string `json:"category,omitempty"`
		Subtasks string `json:"subtasks"`
	}
	rows := []row{}
	for _, t := range tasks {
		r := row{ID: t.ID, Title: t.Title, Status: string(t.Status), Priority: string(t.Priority)}
		if t.DueDate != nil {
			r.Due = t.DueDate.UTC().Format("2006-01-02")
		}
		if t.Category != nil {
			r.Category = t.Category.Name
		}
		done := 0
		for _, s := range t.Subtasks {
			if s.IsCompleted {
				done++
			}
		}
		r.Subtasks = fmt.Sprintf("%d/%d", done, len(t.Subtasks))
		rows = append(rows, r)
	}
	printJSON(rows)
	return nil
}

func cmdTaskAdd(ctx context.Context, c *client.Client, userID int64, args []string) error {
	tf := newTaskFlags("task-add", false)
	if err := tf.fs.Parse(args); err != nil {
		return err
	}
	if *tf.title == "" {
		return errors.New("need -title")
	}
	t, err := c.CreateTask(ctx, userID, tf.fields())
	if err != nil {
		return err
	}
	printJSON(t)
	return nil
}

func cmdTaskShow(ctx context.Context, c *client.Client, userID int64, args []string) error {
	id, err := idFlag("task-show", args)
	if err != nil {
		return err
	}
	t, err := c.GetTask(ctx, userID, id)
	if err != nil {
		return err
	}
	printJSON(t)
	return nil
}

func cmdTaskEdit(ctx context.Context, c *client.Client, userID int64, args []string) error {
	tf := newTaskFlags("task-edit", true)
	if err := tf.fs.Parse(args); err != nil {
		return err
	}
	if *tf.id == "" {
		return errors.New("need -id")
	}
	id, err := parseID(*tf.id)
	if err != nil {
		return err
	}
	t, err := c.UpdateTask(ctx, userID, id, tf.fields())
	if err != nil {
		return err
	}
	printJSON(t)
	return nil
}

func cmdTaskDone(ctx context.Context, c *client.Client, userID int64, args []string) error {
	id, err := idFlag("task-done", args)
	if err != nil {
		return err
	}
	done, status := true, string(model.StatusDone)
	t, err := c.UpdateTask(ctx, userID, id, client.TaskFields{IsCompleted: &done, Status: &status})
	if err != nil {
		return err
	}
	printJSON(t)
	return nil
}

func cmdTaskRm(ctx context.Context, c *client.Client, userID int64, args []string) error {
	id, err := idFlag("task-rm", args)
	if err != nil {
		return err
	}
	if err := c.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

// ---- categories ----

func categoryFields(name string, withID bool, args []string) (int64, client.CategoryFields, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var rawID *string
	if withID {
		rawID = fs.String("id", "", "category id")
	}
	n := fs.String("name", "", "name")
	d := fs.String("desc", "", "description")
	col := fs.String("color", "", "hex color, e.g. #ff8800")
	if err := fs.Parse(args); err != nil {
		return 0, client.CategoryFields{}, err
	}
	set := given(fs)
	var f client.CategoryFields
	if set["name"] {
		f.Name = n
	}
	if set["desc"] {
		f.Description = d
	}
	if set["color"] {
		f.Color = col
	}
	if !withID {
		return 0, f, nil
	}
	if *rawID == "" {
		return 0, f, errors.New("need -id")
	}
	id, err := parseID(*rawID)
	return id, f, err
}

func cmdCategories(ctx context.Context, c *client.Client, _ int64, _ []string) error {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return err
	}
	printJSON(cats)
	return nil
}

func cmdCategoryAdd(ctx context.Context, c *client.Client, _ int64, args []string) error {
	_, f, err := categoryFields("category-add", false, args)
	if err != nil {
		return err
	}
	if f.Name == nil || *f.Name == "" {
		return errors.New("need -name")
	}
	cat, err := c.CreateCategory(ctx, f)
	if err != nil {
		return err
	}
	printJSON(cat)
	return nil
}

func cmdCategoryEdit(ctx context.Context, c *client.Client, _ int64, args []string) error {
	id, f, err := categoryFields("category-edit", true, args)
	if err != nil {
		return err
	}
	cat, err := c.UpdateCategory(ctx, id, f)
	if err != nil {
		return err
	}
	printJSON(cat)
	return nil
}

func cmdCategoryRm(ctx context.Context, c *client.Client, _ int64, args []string) error {
	id, err := idFlag("category-rm", args)
	if err != nil {
		return err
	}
	if err := c.DeleteCategory(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

// ---- notes ----

func noteFields(name string, withID bool, args []string) (int64, client.NoteFields, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var rawID *string
	if withID {
		rawID = fs.String("id", "", "note id")
	}
	title := fs.String("title", "", "title")
	content := fs.String("content", "", "content")
	file := fs.String("file", "", "read content from file ('-'=stdin)")
	if err := fs.Parse(args); err != nil {
		return 0, client.NoteFields{}, err
	}
	set := given(fs)
	var f client.NoteFields
	if set["title"] {
		f.Title = title
	}
	switch {
	case set["file"] && set["content"]:
		return 0, f, errors.New("use either -content or -file")
	case set["file"]:
		b, err := readAll(*file)
		if err != nil {
			return 0, f, err
		}
		s := string(b)
		f.Content = &s
	case set["content"]:
		f.Content = content
	}
	if !withID {
		return 0, f, nil
	}
	if *rawID == "" {
		return 0, f, errors.New("need -id")
	}
	id, err := parseID(*rawID)
	return id, f, err
}

func cmdNotes(ctx context.Context, c *client.Client, _ int64, _ []string) error {
	notes, err := c.ListNotes(ctx)
	if err != nil {
		return err
	}
	printJSON(notes)
	return nil
}

func cmdNoteAdd(ctx context.Context, c *client.Client, _ int64, args []string) error {
	_, f, err := noteFields("note-add", false, args)
	if err != nil {
		return err
	}
	if f.Title == nil || *f.Title == "" {
		return errors.New("need -title")
	}
	n, err := c.CreateNote(ctx, f)
	if err != nil {
		return err
	}
	printJSON(n)
	return nil
}

func cmdNoteEdit(ctx context.Context, c *client.Client, _ int64, args []string) error {
	id, f, err := noteFields("note-edit", true, args)
	if err != nil {
		return err
	}
	n, err := c.UpdateNote(ctx, id, f)
	if err != nil {
		return err
	}
	printJSON(n)
	return nil
}

func cmdNoteRm(ctx context.Context, c *client.Client, _ int64, args []string) error {
	id, err := idFlag("note-rm", args)
	if err != nil {
		return err
	}
	if err := c.DeleteNote(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}
