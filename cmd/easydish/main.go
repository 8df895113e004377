package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"easydish/internal/app"
	"easydish/internal/config"
	"easydish/internal/logging"
	"easydish/internal/recipe"
)

// withApp builds the app from the environment, runs fn against it and waits
// for background sync and persistence before returning.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app.App) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.IsSet("log-level") {
			cfg.LogLevel = cmd.String("log-level")
		}

		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		a, err := app.New(ctx, cfg, logger, os.Stdout)
		if err != nil {
			return err
		}
		return a.Run(ctx, func(ctx context.Context) error {
			return fn(ctx, cmd, a)
		})
	}
}

func recipesCommand() *cli.Command {
	return &cli.Command{
		Name:  "recipes",
		Usage: "Manage recipes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recipes, optionally filtered by a fuzzy query",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search title, tags and ingredients"},
				},
				Action: withApp(func(_ context.Context, cmd *cli.Command, a *app.App) error {
					a.ListRecipes(cmd.String("query"))
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Add a recipe by hand",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "prep-time"},
					&cli.StringFlag{Name: "servings"},
					&cli.StringFlag{Name: "ingredients", Usage: "One ingredient per line"},
					&cli.StringFlag{Name: "steps", Usage: "One step per line"},
					&cli.StringFlag{Name: "image", Usage: "Image URL"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
					in := recipe.ManualInput{
						Title:       cmd.String("title"),
						PrepTime:    cmd.String("prep-time"),
						Servings:    cmd.String("servings"),
						Ingredients: cmd.String("ingredients"),
						Steps:       cmd.String("steps"),
					}
					if cmd.IsSet("image") {
						img := cmd.String("image")
						in.Image = &img
					}
					_, err := a.AddRecipe(ctx, in)
					return err
				}),
			},
			{
				Name:  "import",
				Usage: "Format pasted text or a web page into a recipe",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "Recipe text; use - to read stdin"},
					&cli.StringFlag{Name: "url", Usage: "Page to import"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
					text, url := cmd.String("text"), cmd.String("url")
					if text == "" && url == "" {
						return fmt.Errorf("one of --text or --url is required")
					}
					if text == "-" {
						b, err := io.ReadAll(os.Stdin)
						if err != nil {
							return fmt.Errorf("failed to read stdin: %w", err)
						}
						text = string(b)
					}
					_, err := a.ImportRecipe(ctx, text, url)
					return err
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a recipe",
				ArgsUsage: "<id>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
					id, err := requireArg(cmd, "id")
					if err != nil {
						return err
					}
					return a.DeleteRecipe(ctx, id)
				}),
			},
			{
				Name:  "fetch",
				Usage: "Pull recipes from the remote store",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app.App) error {
					return a.FetchRecipes(ctx)
				}),
			},
		},
	}
}

func shopCommand() *cli.Command {
	return &cli.Command{
		Name:  "shop",
		Usage: "Manage the shopping list",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a recipe's ingredients",
				ArgsUsage: "<recipe-id>",
				Action: withApp(func(_ context.Context, cmd *cli.Command, a *app.App) error {
					id, err := requireArg(cmd, "recipe-id")
					if err != nil {
						return err
					}
					return a.ShopAdd(id)
				}),
			},
			{
				Name:  "list",
				Usage: "Show the list grouped by category",
				Action: withApp(func(_ context.Context, _ *cli.Command, a *app.App) error {
					a.ShopList()
					return nil
				}),
			},
			{
				Name:      "toggle",
				Usage:     "Mark an item done or not done",
				ArgsUsage: "<item-id>",
				Action: withApp(func(_ context.Context, cmd *cli.Command, a *app.App) error {
					id, err := requireArg(cmd, "item-id")
					if err != nil {
						return err
					}
					a.ShopToggle(id)
					return nil
				}),
			},
			{
				Name:  "clear",
				Usage: "Empty the list",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "completed", Usage: "Only remove completed items"},
				},
				Action: withApp(func(_ context.Context, cmd *cli.Command, a *app.App) error {
					a.ShopClear(cmd.Bool("completed"))
					return nil
				}),
			},
			{
				Name:      "remove-recipe",
				Usage:     "Remove every item that came from a recipe",
				ArgsUsage: "<title>",
				Action: withApp(func(_ context.Context, cmd *cli.Command, a *app.App) error {
					title := strings.Join(cmd.Args().Slice(), " ")
					if title == "" {
						return fmt.Errorf("missing <title> argument")
					}
					a.ShopRemoveRecipe(title)
					return nil
				}),
			},
			{
				Name:  "match",
				Usage: "Look up catalog products and prices",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app.App) error {
					return a.ShopMatch(ctx)
				}),
			},
		},
	}
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.Args().First())
	if v == "" {
		return "", fmt.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "easydish",
		Usage: "Recipes and shopping lists, local first with optional remote sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			recipesCommand(),
			shopCommand(),
			{
				Name:  "login",
				Usage: "Sign in with an access token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true, Sources: cli.EnvVars("EASYDISH_ACCESS_TOKEN")},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
					return a.Login(ctx, cmd.String("token"))
				}),
			},
			{
				Name:  "logout",
				Usage: "Sign out; local recipes are kept",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app.App) error {
					return a.Logout(ctx)
				}),
			},
			{
				Name:  "prefs",
				Usage: "Show or change preferences",
				Commands: []*cli.Command{
					{
						Name: "set",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "dark-mode"},
							&cli.StringFlag{Name: "units", Usage: "metric or imperial"},
						},
						Action: withApp(func(_ context.Context, cmd *cli.Command, a *app.App) error {
							var dark *bool
							if cmd.IsSet("dark-mode") {
								v := cmd.Bool("dark-mode")
								dark = &v
							}
							return a.SetPreferences(dark, cmd.String("units"))
						}),
					},
				},
			},
			{
				Name:  "status",
				Usage: "Show local health and recent AI usage",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app.App) error {
					return a.Status(ctx)
				}),
			},
			{
				Name:  "metrics-cleanup",
				Usage: "Delete old execution metrics",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 30},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
					return a.CleanupMetrics(ctx, int(cmd.Int("days")))
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
