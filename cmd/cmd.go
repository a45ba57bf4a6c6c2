// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database initialization and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize local database and configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password (new accounts are created transparently)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and discard the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in account",
				Action: r.AuthWhoami,
			},
			{
				Name:  "update",
				Usage: "Change the account email or password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "email",
						Usage: "New email address",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "New password",
					},
				},
				Action: r.AuthUpdate,
			},
		},
	}
}

// booksCommand handles shelf management operations
func booksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "books",
		Aliases: []string{"book"},
		Usage:   "Manage the reading shelf",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search the public catalog for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to show",
						Value: 10,
					},
				},
				Action: r.BooksSearch,
			},
			{
				Name:  "add",
				Usage: "Add a book to the shelf",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Book title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Book author",
					},
					&cli.StringFlag{
						Name:  "isbn",
						Usage: "ISBN, used to resolve the page count from the catalog",
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Total pages (looked up from the catalog when omitted)",
					},
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Cover image URL",
					},
				},
				Action: r.BooksAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the shelf with reading progress",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BooksList,
			},
			{
				Name:  "pages",
				Usage: "Correct a book's total page count",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "total",
						Usage:    "New total page count",
						Required: true,
					},
				},
				Action: r.BooksPages,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a book from the shelf",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.BooksRemove,
			},
			{
				Name:  "open",
				Usage: "Open a book's catalog page in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.BooksOpen,
			},
		},
	}
}

// progressCommand handles reading progress operations
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Track reading progress",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set the pages read for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "pages",
						Aliases:  []string{"p"},
						Usage:    "Pages read",
						Required: true,
					},
				},
				Action: r.ProgressSet,
			},
			{
				Name:  "history",
				Usage: "Show the dated history for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProgressHistory,
			},
			{
				Name:  "chart",
				Usage: "Render the reading history as a chart",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "export",
						Usage: "Also export history CSV using this base filename",
					},
				},
				Action: r.ProgressChart,
			},
			{
				Name:  "export",
				Usage: "Export reading history for the whole shelf",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory (defaults to bookmark_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "History fetches per second",
					},
					&cli.StringSliceFlag{
						Name:  "book",
						Usage: "Restrict export to this book ID (repeatable)",
					},
				},
				Action: r.ProgressExport,
			},
		},
	}
}

// profileCommand handles user profile operations
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage the user profile",
		Commands: []*cli.Command{
			{
				Name:  "avatar",
				Usage: "Upload a profile avatar",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the image file",
						Required: true,
					},
				},
				Action: r.ProfileAvatar,
			},
			{
				Name:  "username",
				Usage: "Change the profile username",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ProfileUsername,
			},
		},
	}
}

// serveCommand runs the local catalog rewrite proxy.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local catalog rewrite proxy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for the interactive shelf.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive reading shelf",
		Action:  r.TUI,
	}
}
