package cmd

import (
	"fmt"

	"github.com/dwlr/dpms/internal/output"
	"github.com/dwlr/dpms/internal/power"
	"github.com/spf13/cobra"
)

var (
	listJSON    bool
	listVerbose bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all connected displays",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		displays, err := backend.ListDisplays()
		if err != nil {
			return err
		}
		if len(displays) == 0 {
			return power.ErrNoDisplayFound
		}
		fmt.Print(output.FormatList(displays, listJSON, listVerbose))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "show detailed information (make, model)")
	rootCmd.AddCommand(listCmd)
}
