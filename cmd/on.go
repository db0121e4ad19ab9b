package cmd

import (
	"github.com/dwlr/dpms/internal/power"
	"github.com/spf13/cobra"
)

var onAll bool

var onCmd = &cobra.Command{
	Use:   "on [DISPLAY]",
	Short: "Turn display power on",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPower(args, onAll, power.PowerOn)
	},
}

func init() {
	onCmd.Flags().BoolVar(&onAll, "all", false, "target all displays")
	rootCmd.AddCommand(onCmd)
}
