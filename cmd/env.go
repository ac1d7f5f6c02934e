package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/anisan-cli/skipsync/color"
	"github.com/anisan-cli/skipsync/config"
	"github.com/anisan-cli/skipsync/style"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Show only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Show only variables that are not set")
	envCmd.Flags().BoolP("describe", "d", false, "Show what every variable configures")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
	envCmd.SetOut(os.Stdout)
}

// envVar is an environment variable skipsync reads.
type envVar struct {
	name        string
	description string
}

// envVars lists the config path override and one variable per config key, sorted by name.
func envVars() []envVar {
	vars := []envVar{{where.EnvConfigPath, "Directory of skipsync.toml, segments and logs"}}
	for _, k := range config.EnvExposed {
		f := config.Default[k]
		vars = append(vars, envVar{f.Env(), f.Description})
	}

	slices.SortFunc(vars, func(a, b envVar) int {
		return strings.Compare(a.name, b.name)
	})
	return vars
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables skipsync reads",
	Long: `List the environment variables skipsync reads and their values.
Every config key can be set as SKIPSYNC_<KEY>, for example SKIPSYNC_NOTICE_ADVANCE_LEAD=5s.`,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))
		describe := lo.Must(cmd.Flags().GetBool("describe"))

		for _, v := range envVars() {
			value, present := os.LookupEnv(v.name)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			shown := style.Fg(color.Red)("unset")
			if present {
				shown = style.Fg(color.Green)(value)
			}
			cmd.Printf("%s=%s\n", style.New().Bold(true).Foreground(color.Purple).Render(v.name), shown)

			if describe {
				for _, line := range strings.Split(v.description, "\n") {
					cmd.Println(style.Faint(fmt.Sprintf("  %s", line)))
				}
			}
		}
	},
}
