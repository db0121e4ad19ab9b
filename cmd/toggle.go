package cmd

import (
	"github.com/dwlr/dpms/internal/power"
	"github.com/spf13/cobra"
)

var toggleAll bool

var toggleCmd = &cobra.Command{
	Use:   "toggle [DISPLAY]",
	Short: "Toggle display power state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := power.TargetFromArgs(displayArg(args), toggleAll)

		backend, err := newBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		displays, err := backend.GetPower(target)
		if err != nil {
			return err
		}

		// The single-display case keeps the caller's target so backends
		// that only know a pseudo-display (TTY default path) still work.
		if len(displays) == 1 && target.Kind != power.TargetNamed {
			return backend.SetPower(target, displays[0].Power.Toggled())
		}

		for _, d := range displays {
			if err := backend.SetPower(power.NamedTarget(d.Name), d.Power.Toggled()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	toggleCmd.Flags().BoolVar(&toggleAll, "all", false, "target all displays")
	rootCmd.AddCommand(toggleCmd)
}
