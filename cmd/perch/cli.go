package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/db"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/prefs"
	"github.com/hpungsan/perch/internal/search"
	"github.com/hpungsan/perch/internal/store"
	"github.com/hpungsan/perch/internal/tui"
	"github.com/hpungsan/perch/internal/web"
)

// env is what the commands share: the state directory, the open database
// and the loaded config.
type env struct {
	baseDir   string
	db        *sql.DB
	cfg       *config.Config
	prefsPath string
}

// session opens the desktop stored under the --layout key.
func (e *env) session(c *cli.Context, opts ...ops.Option) (*ops.Session, error) {
	st := store.NewSQLite(e.db, c.String("layout"))
	return ops.NewSession(c.Context, st, e.cfg, opts...)
}

func (e *env) prefs() string {
	if e.prefsPath != "" {
		return e.prefsPath
	}
	return prefs.DefaultPath()
}

// withSession runs fn against a session and prints its result as JSON.
func (e *env) withSession(fn func(c *cli.Context, sess *ops.Session) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		sess, err := e.session(c)
		if err != nil {
			return outputError(err)
		}
		defer sess.Close()
		v, err := fn(c, sess)
		if err != nil {
			return outputError(err)
		}
		return outputJSON(c.App.Writer, v)
	}
}

// result pairs an outcome with the desktop it produced.
type result struct {
	Outcome ops.Outcome        `json:"outcome"`
	Item    any                `json:"item,omitempty"`
	Desktop ops.DesktopSummary `json:"desktop"`
}

func mutation(sess *ops.Session, out ops.Outcome, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return result{Outcome: out, Desktop: ops.Summarize(sess.Snapshot())}, nil
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "perch",
		Usage:   "Start page desktop of links and folders",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "layout", Value: store.DefaultKey, Usage: "Name the desktop is stored under"},
		},
		Commands: []*cli.Command{
			showCmd(e),
			addLinkCmd(e),
			addFolderCmd(e),
			swapCmd(e),
			dropCmd(e),
			reorderCmd(e),
			resizeCmd(e),
			extractCmd(e),
			deleteCmd(e),
			exportCmd(e),
			importCmd(e),
			resetCmd(e),
			searchCmd(e),
			layoutsCmd(e),
			serveCmd(e),
			tuiCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// showCmd creates the show command.
func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the desktop, or one folder",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Folder id"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			if id := c.String("folder"); id != "" {
				return ops.SummarizeFolder(sess.Snapshot(), id)
			}
			return ops.Summarize(sess.Snapshot()), nil
		}),
	}
}

// addLinkCmd creates the add-link command.
func addLinkCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "add-link",
		Usage: "Add a link to the first empty slot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Link title"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "Address; https:// is added when missing"},
			&cli.StringFlag{Name: "icon", Aliases: []string{"i"}, Usage: "Icon name (default Compass)"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			link, out, err := sess.CreateLink(c.Context, ops.CreateLinkInput{
				Title:    c.String("title"),
				Address:  c.String("url"),
				IconName: c.String("icon"),
			})
			if err != nil {
				return nil, err
			}
			return result{Outcome: out, Item: link, Desktop: ops.Summarize(sess.Snapshot())}, nil
		}),
	}
}

// addFolderCmd creates the add-folder command.
func addFolderCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "add-folder",
		Usage: "Add an empty folder to the first empty slot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Folder title"},
			&cli.StringFlag{Name: "size", Aliases: []string{"s"}, Value: "3x3", Usage: "Folder size: 2x2|3x3"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			folder, out, err := sess.CreateFolder(c.Context, ops.CreateFolderInput{
				Title: c.String("title"),
				Size:  c.String("size"),
			})
			if err != nil {
				return nil, err
			}
			return result{Outcome: out, Item: folder, Desktop: ops.Summarize(sess.Snapshot())}, nil
		}),
	}
}

// swapCmd creates the swap command.
func swapCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "swap",
		Usage:     "Exchange two desktop slots",
		ArgsUsage: "<slot> <slot>",
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			ints, err := intArgs(c, "slot", "slot")
			if err != nil {
				return nil, err
			}
			out, err := sess.Swap(c.Context, ints[0], ints[1])
			return mutation(sess, out, err)
		}),
	}
}

// dropCmd creates the drop command.
func dropCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "drop",
		Usage:     "Release a slot onto another: a link on a folder joins it, anything else swaps",
		ArgsUsage: "<source> <target>",
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			ints, err := intArgs(c, "source", "target")
			if err != nil {
				return nil, err
			}
			out, err := sess.Drop(c.Context, ints[0], ints[1])
			return mutation(sess, out, err)
		}),
	}
}

// reorderCmd creates the reorder command.
func reorderCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "reorder",
		Usage:     "Exchange two links inside a folder",
		ArgsUsage: "<folder> <index> <index>",
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			id := c.Args().First()
			ints, err := intArgsFrom(c, 1, "index", "index")
			if err != nil {
				return nil, err
			}
			if err := requireFolder(sess, id); err != nil {
				return nil, err
			}
			out, err := sess.Reorder(c.Context, id, ints[0], ints[1])
			return mutation(sess, out, err)
		}),
	}
}

// resizeCmd creates the resize command.
func resizeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "resize",
		Usage:     "Set a folder's size, or toggle it when --size is not given",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "size", Aliases: []string{"s"}, Usage: "Folder size: 2x2|3x3"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			id := c.Args().First()
			if err := requireFolder(sess, id); err != nil {
				return nil, err
			}
			if size := c.String("size"); size != "" {
				out, err := sess.SetFolderSize(c.Context, id, size)
				return mutation(sess, out, err)
			}
			out, err := sess.ToggleFolderSize(c.Context, id)
			return mutation(sess, out, err)
		}),
	}
}

// extractCmd creates the extract command.
func extractCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Move a link out of a folder into the first empty desktop slot",
		ArgsUsage: "<folder> <index>",
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			id := c.Args().First()
			ints, err := intArgsFrom(c, 1, "index")
			if err != nil {
				return nil, err
			}
			if err := requireFolder(sess, id); err != nil {
				return nil, err
			}
			out, err := sess.Extract(c.Context, id, ints[0])
			return mutation(sess, out, err)
		}),
	}
}

// deleteResult reports a delete request and whether it was carried out.
type deleteResult struct {
	Pending   *ops.DeleteRequest `json:"pending"`
	Confirmed bool               `json:"confirmed"`
	Outcome   ops.Outcome        `json:"outcome"`
}

// deleteCmd creates the delete command. Without --yes it only reports what
// would be deleted.
func deleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a desktop item, or a link inside a folder",
		ArgsUsage: "<slot> | --folder <id> --link <id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Folder id holding the link"},
			&cli.StringFlag{Name: "link", Aliases: []string{"l"}, Usage: "Link id inside the folder"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the deletion"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			var (
				out ops.Outcome
				err error
			)
			if fid := c.String("folder"); fid != "" {
				if c.String("link") == "" {
					return nil, errors.NewInvalidRequest("--link is required with --folder")
				}
				out, err = sess.RequestDeleteLink(c.Context, fid, c.String("link"))
				if err == nil && !out.Changed {
					return nil, errors.NewNotFound("link", c.String("link"))
				}
			} else {
				ints, aerr := intArgs(c, "slot")
				if aerr != nil {
					return nil, aerr
				}
				out, err = sess.RequestDeleteItem(c.Context, ints[0])
				if err == nil && !out.Changed {
					return nil, errors.NewNotFound("slot", strconv.Itoa(ints[0]))
				}
			}
			if err != nil {
				return nil, err
			}

			res := deleteResult{Pending: sess.Snapshot().PendingDelete}
			if !c.Bool("yes") {
				if _, err := sess.CancelDelete(c.Context); err != nil {
					return nil, err
				}
				return res, nil
			}
			res.Outcome, err = sess.ConfirmDelete(c.Context)
			if err != nil {
				return nil, err
			}
			res.Confirmed = res.Outcome.Changed
			return res, nil
		}),
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the desktop to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.perch/exports/<name>-<timestamp>.json)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "File name prefix for the default path"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			return sess.Export(c.Context, ops.ExportInput{
				Path: c.String("path"),
				Name: c.String("name"),
			})
		}),
	}
}

// importCmd creates the import command.
func importCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace the desktop with one from a JSON export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			return sess.Import(c.Context, ops.ImportInput{Path: c.String("path")})
		}),
	}
}

// resetCmd creates the reset command.
func resetCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Restore the default desktop layout",
		Action: e.withSession(func(c *cli.Context, sess *ops.Session) (any, error) {
			out, err := sess.Reset(c.Context)
			return mutation(sess, out, err)
		}),
	}
}

// searchResult is the URL a query resolves to.
type searchResult struct {
	Engine search.Engine `json:"engine"`
	URL    string        `json:"url"`
}

// searchCmd creates the search command.
func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Print the search URL for a query",
		ArgsUsage: "<query...>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "engine", Aliases: []string{"e"}, Usage: "google|bing|yandex|duckduckgo (default from preferences)"},
		},
		Action: func(c *cli.Context) error {
			engine := search.Default
			if e != nil {
				p, _ := prefs.Load(e.prefs())
				engine = p.Engine()
			}
			if name := c.String("engine"); name != "" {
				parsed, err := search.Parse(name)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				engine = parsed
			}
			target, ok := engine.URL(strings.Join(c.Args().Slice(), " "))
			if !ok {
				return outputError(errors.NewInvalidRequest("query is required"))
			}
			return outputJSON(c.App.Writer, searchResult{Engine: engine, URL: target})
		},
	}
}

// layoutInfo is one stored layout.
type layoutInfo struct {
	Name      string    `json:"name"`
	Bytes     int       `json:"bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// layoutsCmd creates the layouts command.
func layoutsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "layouts",
		Usage: "List stored layouts",
		Action: func(c *cli.Context) error {
			rows, err := db.ListLayouts(c.Context, e.db)
			if err != nil {
				return outputError(err)
			}
			out := make([]layoutInfo, 0, len(rows))
			for _, r := range rows {
				out = append(out, layoutInfo{Name: r.Key, Bytes: r.Size, UpdatedAt: time.Unix(r.UpdatedAt, 0).UTC()})
			}
			return outputJSON(c.App.Writer, out)
		},
		Subcommands: []*cli.Command{
			{
				Name:      "delete",
				Usage:     "Delete a stored layout",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return outputError(errors.NewInvalidRequest("layout name is required"))
					}
					deleted, err := db.DeleteLayout(c.Context, e.db, name)
					if err != nil {
						return outputError(err)
					}
					if !deleted {
						return outputError(errors.NewNotFound("layout", name))
					}
					return outputJSON(c.App.Writer, map[string]any{"name": name, "deleted": true})
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the desktop in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			sess, err := e.session(c)
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			bind, port := e.cfg.WebBind, e.cfg.WebPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}
			return web.Run(web.NewServer(sess, e.prefs(), Version, bind, port))
		},
	}
}

// tuiCmd creates the tui command.
func tuiCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the desktop in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "theme", Usage: "Theme: " + strings.Join(tui.ThemeNames(), "|")},
		},
		Action: func(c *cli.Context) error {
			clock := tui.NewClock()
			sess, err := e.session(c, ops.WithClock(clock))
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			return tui.Run(tui.Options{
				Context:   c.Context,
				Session:   sess,
				Clock:     clock,
				PrefsPath: e.prefs(),
				Theme:     c.String("theme"),
				LogPath:   filepath.Join(e.baseDir, "perch.log"),
			})
		},
	}
}

// Helper functions

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if perchErr, ok := err.(*errors.PerchError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", perchErr.Code, perchErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// requireFolder reports NOT_FOUND for an id that is not a folder on the
// desktop.
func requireFolder(sess *ops.Session, id string) error {
	if id == "" {
		return errors.NewInvalidRequest("folder id is required")
	}
	if _, _, ok := sess.Snapshot().Grid.Folder(id); !ok {
		return errors.NewNotFound("folder", id)
	}
	return nil
}

// intArgs parses the positional arguments as integers, one per name.
func intArgs(c *cli.Context, names ...string) ([]int, error) {
	return intArgsFrom(c, 0, names...)
}

func intArgsFrom(c *cli.Context, offset int, names ...string) ([]int, error) {
	if c.NArg() < offset+len(names) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("expected %d arguments: %s", offset+len(names), c.Command.ArgsUsage))
	}
	out := make([]int, len(names))
	for i, name := range names {
		raw := c.Args().Get(offset + i)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("%s must be a number (got %q)", name, raw))
		}
		out[i] = n
	}
	return out, nil
}
