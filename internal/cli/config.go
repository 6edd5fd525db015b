package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/aoss-console/internal/config"
)

// ConfigInitOptions contains the options for config init.
type ConfigInitOptions struct {
	Force    bool
	Endpoint string
	AuthMode string
	APIKey   string
	Region   string
	Author   string
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	opts := &ConfigInitOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Long: `Write a configuration file with default settings.

Without --no-tui a short form asks for the remote comment service and the
author recorded on new comments. Leave the endpoint empty to keep every
comment in the local store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !opts.Force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if !IsNoTUI() {
				if err := opts.ask(cfg); err != nil {
					return err
				}
			}
			opts.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
			if err := config.Write(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "GraphQL endpoint of the comment service")
	cmd.Flags().StringVar(&opts.AuthMode, "auth-mode", "", "remote authorization (api_key, iam, none)")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key for api_key mode")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region for iam mode")
	cmd.Flags().StringVar(&opts.Author, "author", "", "author recorded on new comments")
	return cmd
}

func (o *ConfigInitOptions) ask(cfg *config.Config) error {
	if o.AuthMode == "" {
		o.AuthMode = cfg.Remote.AuthMode
	}
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Comment service endpoint").
				Description("GraphQL URL; leave empty to store comments locally").
				Placeholder("https://example.appsync-api.us-east-1.amazonaws.com/graphql").
				Value(&o.Endpoint),
			huh.NewSelect[string]().
				Title("Authorization").
				Options(
					huh.NewOption("API key", "api_key"),
					huh.NewOption("AWS IAM (SigV4)", "iam"),
					huh.NewOption("None", "none"),
				).
				Value(&o.AuthMode),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	var fields []huh.Field
	switch o.AuthMode {
	case "api_key":
		fields = append(fields, huh.NewInput().Title("API key").EchoMode(huh.EchoModePassword).Value(&o.APIKey))
	case "iam":
		fields = append(fields, huh.NewInput().Title("AWS region").Placeholder(cfg.Remote.Region).Value(&o.Region))
	}
	fields = append(fields, huh.NewInput().Title("Author").Placeholder(cfg.Comments.Author).Value(&o.Author))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

func (o *ConfigInitOptions) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Remote.Endpoint, o.Endpoint)
	set(&cfg.Remote.AuthMode, o.AuthMode)
	set(&cfg.Remote.APIKey, o.APIKey)
	set(&cfg.Remote.Region, o.Region)
	set(&cfg.Comments.Author, o.Author)
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults and AOSS_* environment overrides are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(configPath())
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
