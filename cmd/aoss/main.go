package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chazuruo/aoss-console/internal/cli"
)

// Set at build time using ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	BuiltBy = "unknown"
)

func main() {
	console := cli.NewConsoleCommand()
	rootCmd := &cobra.Command{
		Use:   "aoss",
		Short: "OpenSearch Serverless console prototype",
		Long: `aoss is a terminal prototype of the OpenSearch Serverless console.

It lists collections, collection groups and indexes, walks through the
create flows with simulated provisioning, and lets reviewers leave comments
pinned to any screen. Run "aoss console" for the interactive console.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.IsNoTUI() {
				return cmd.Help()
			}
			return console.RunE(cmd, args)
		},
	}

	cli.AddGlobalFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(console)
	rootCmd.AddCommand(cli.NewCollectionsCommand())
	rootCmd.AddCommand(cli.NewGroupsCommand())
	rootCmd.AddCommand(cli.NewIndexesCommand())
	rootCmd.AddCommand(cli.NewCreateCommand())
	rootCmd.AddCommand(cli.NewCommentsCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand(Version, Commit, Date, BuiltBy))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}
