package cmd

import (
	"github.com/dwlr/dpms/internal/config"
	"github.com/dwlr/dpms/internal/tty"
	"github.com/spf13/cobra"
)

// daemonCmd is the internal daemon entry. "dpms off" re-executes the
// binary with this hidden subcommand instead of forking; the child is
// started as a session leader with stdio on /dev/null and performs the
// acquire-and-wait loop.
var daemonCmd = &cobra.Command{
	Use:    tty.DaemonCommand + " [CONNECTOR...]",
	Hidden: true,
	Args:   cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tty.RunDaemon(args, config.Get().Drm.Card)
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
