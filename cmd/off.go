package cmd

import (
	"github.com/dwlr/dpms/internal/power"
	"github.com/spf13/cobra"
)

var offAll bool

var offCmd = &cobra.Command{
	Use:   "off [DISPLAY]",
	Short: "Turn display power off",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPower(args, offAll, power.PowerOff)
	},
}

func init() {
	offCmd.Flags().BoolVar(&offAll, "all", false, "target all displays")
	rootCmd.AddCommand(offCmd)
}
