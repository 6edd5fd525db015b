package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	BuiltBy string `json:"built_by"`
	Go      string `json:"go_version"`
}

// VersionOptions contains the options for the version command.
type VersionOptions struct {
	Short bool
	JSON  bool
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date, builtBy string) *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Version: version, Commit: commit, Date: date, BuiltBy: builtBy, Go: runtime.Version()}
			return printVersion(cmd.OutOrStdout(), opts, info)
		},
	}

	cmd.Flags().BoolVar(&opts.Short, "short", false, "print only the version number")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	return cmd
}

func printVersion(w io.Writer, opts *VersionOptions, info VersionInfo) error {
	switch {
	case opts.JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case opts.Short:
		fmt.Fprintln(w, info.Version)
	default:
		fmt.Fprintf(w, "aoss %s (commit %s, built %s", info.Version, info.Commit, info.Date)
		if info.BuiltBy != "" && info.BuiltBy != "unknown" {
			fmt.Fprintf(w, " by %s", info.BuiltBy)
		}
		fmt.Fprintf(w, ", %s)\n", info.Go)
	}
	return nil
}
