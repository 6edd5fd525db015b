package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazuruo/aoss-console/internal/router"
	"github.com/chazuruo/aoss-console/internal/tui"
)

// NewConsoleCommand creates the console command.
func NewConsoleCommand() *cobra.Command {
	var route string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		Long: `Open the OpenSearch Serverless console in the terminal.

The console starts on the collections list unless --route names another page,
for example "#/collection-groups" or "#/collection-details?collection=awd2718".

Comments: ctrl+o opens the panel, ctrl+p arms pin placement, ctrl+t shows
or hides pins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := router.Parse(route)
			if err != nil {
				return err
			}
			if IsNoTUI() {
				return fmt.Errorf("console needs the TUI; drop --no-tui or use the list and create commands")
			}

			e, err := loadEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()
			if !e.cfg.TUI.Enabled {
				return fmt.Errorf("console needs the TUI; set [tui].enabled = true")
			}
			return tui.Run(cmd.Context(), e.deps(), r)
		},
	}

	cmd.Flags().StringVar(&route, "route", "", "hash route to open (default: collections list)")
	return cmd
}
