package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// elvishCompletion is hand-written: cobra ships no elvish generator.
const elvishCompletion = `set edit:completion:arg-completer[dpms] = {|@words|
    var subcommands = [on off toggle status list completion]
    if (== (count $words) 2) {
        put $@subcommands
    } elif (has-value [completion] $words[1]) {
        put bash zsh fish elvish powershell
    }
}
`

var completionCmd = &cobra.Command{
	Use:       "completion <shell>",
	Short:     "Generate shell completion script",
	ValidArgs: []string{"bash", "zsh", "fish", "elvish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		case "elvish":
			_, err := fmt.Fprint(os.Stdout, elvishCompletion)
			return err
		}
		return nil
	},
}

func init() {
	// Replace cobra's built-in completion command so the shell set
	// stays under our control (it lacks elvish).
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}
