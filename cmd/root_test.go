package cmd

import (
	"strings"
	"testing"

	"github.com/dwlr/dpms/internal/power"
	"github.com/stretchr/testify/assert"
)

func execute(t *testing.T, args ...string) int {
	t.Helper()
	ranCommand = false
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return Execute()
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	assert.Equal(t, power.ExitUsage, execute(t, "bogus"))
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	assert.Equal(t, power.ExitUsage, execute(t, "list", "--bogus"))
}

func TestTooManyArgsIsUsageError(t *testing.T) {
	assert.Equal(t, power.ExitUsage, execute(t, "on", "DP-1", "DP-2"))
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	assert.Equal(t, power.ExitUsage, execute(t, "completion", "tcsh"))
}

func TestCompletionShellSet(t *testing.T) {
	assert.Equal(t,
		[]string{"bash", "zsh", "fish", "elvish", "powershell"},
		completionCmd.ValidArgs)
}

func TestElvishCompletionMentionsSubcommands(t *testing.T) {
	for _, sub := range []string{"on", "off", "toggle", "status", "list", "completion"} {
		assert.True(t, strings.Contains(elvishCompletion, sub), "elvish script must complete %q", sub)
	}
	assert.False(t, strings.Contains(elvishCompletion, "__daemon"),
		"the internal daemon command must not be completed")
}

func TestDisplayArg(t *testing.T) {
	assert.Equal(t, "", displayArg(nil))
	assert.Equal(t, "DP-1", displayArg([]string{"DP-1"}))
}

func TestDaemonCommandIsHidden(t *testing.T) {
	assert.True(t, daemonCmd.Hidden)
}
