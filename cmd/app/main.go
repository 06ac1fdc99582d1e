package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/rolodex/internal"
	"github.com/starford/rolodex/internal/models"
	pkgconfig "github.com/starford/rolodex/pkg/config"
)

// loadOptions reads the config file named by --config.
func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// requireArg returns the first positional argument or a usage error.
func requireArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() < 1 || cmd.Args().First() == "" {
		return "", fmt.Errorf("%s: missing <%s>", cmd.Name, name)
	}
	return cmd.Args().First(), nil
}

// contactFlags are shared by add and edit.
func contactFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Full name"},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
	}
}

// fieldsFromFlags collects only the flags that were set, so edit can tell
// "leave alone" from "clear".
func fieldsFromFlags(cmd *cli.Command) models.Fields {
	fields := models.Fields{}
	for flag, field := range map[string]string{
		"name":  models.FieldFullName,
		"email": models.FieldEmail,
		"phone": models.FieldPhoneNumber,
		"tags":  models.FieldTags,
	} {
		if cmd.IsSet(flag) {
			fields[field] = cmd.String(flag)
		}
	}
	return fields
}

func main() {
	cmd := &cli.Command{
		Name:   "rolodex",
		Usage:  "Contact manager backed by a remote contacts service",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and event stream (default)",
				Action: serve,
			},
			{
				Name:  "mcp",
				Usage: "Serve MCP tools over stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, opts...)
				},
			},
			{
				Name:  "fixture",
				Usage: "Run the development contacts data service",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunFixture(ctx, opts...)
				},
			},
			{
				Name:  "list",
				Usage: "Print every contact",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tag", Usage: "Only contacts carrying this exact tag"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunList(ctx, cmd.String("tag"), opts...)
				},
			},
			{
				Name:      "search",
				Usage:     "Print contacts whose name contains the query",
				ArgsUsage: "<query>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunSearch(ctx, cmd.Args().First(), opts...)
				},
			},
			{
				Name:  "tags",
				Usage: "Print the tag vocabulary",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunTags(ctx, opts...)
				},
			},
			{
				Name:  "add",
				Usage: "Create a contact",
				Flags: contactFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunAdd(ctx, fieldsFromFlags(cmd), opts...)
				},
			},
			{
				Name:      "edit",
				Usage:     "Update a contact; unset flags keep their value",
				ArgsUsage: "<id>",
				Flags:     contactFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "id")
					if err != nil {
						return err
					}
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunEdit(ctx, models.ContactID(id), fieldsFromFlags(cmd), opts...)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a contact",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "id")
					if err != nil {
						return err
					}
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.RunRemove(ctx, models.ContactID(id), opts...)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
