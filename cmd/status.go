package cmd

import (
	"fmt"

	"github.com/dwlr/dpms/internal/output"
	"github.com/dwlr/dpms/internal/power"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [DISPLAY]",
	Short: "Show display power status",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := power.TargetFromArgs(displayArg(args), false)

		backend, err := newBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		displays, err := backend.GetPower(target)
		if err != nil {
			return err
		}
		fmt.Print(output.FormatStatus(displays, target, statusJSON))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
