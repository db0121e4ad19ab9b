package cmd

import (
	"fmt"
	"os"

	"github.com/dwlr/dpms/internal/config"
	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.2.0-dev"

	// ranCommand distinguishes runtime failures from cobra-level usage
	// errors, which never reach PersistentPreRunE.
	ranCommand bool

	rootCmd = &cobra.Command{
		Use:   "dpms",
		Short: "Control display power state",
		Long: `dpms turns physical displays on and off, both inside a Wayland session
(via the wlr-output-power-management protocol) and on a bare TTY (via a
background daemon holding DRM master).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ranCommand = true
			if err := config.Init(); err != nil {
				return err
			}
			if lvl := config.Get().LogLevel; lvl != "" {
				logger.SetLevel(lvl)
			}
			return nil
		},
	}
)

// Execute runs the root command and returns the process exit code:
// 0 on success, 2 for malformed command lines, 1 for everything else.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !ranCommand {
			return power.ExitUsage
		}
		return power.ExitCode(err)
	}
	return power.ExitSuccess
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &power.UsageError{Err: err}
	})
}

func displayArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
