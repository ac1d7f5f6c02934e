package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/util"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
	// confirm asks before deleting data the user made.
	confirm bool
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache, false},
	{"logs directory", "logs", mo.Some("l"), where.Logs, false},
	{"segment files", "segments", mo.Some("s"), where.Segments, true},
	{"player sockets", "temp", mo.None[string](), where.Temp, false},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}

	clearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached files, logs and saved segments",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool
		yes := lo.Must(cmd.Flags().GetBool("yes"))

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			anyCleared = true

			if target.confirm && !yes {
				var proceed bool
				handleErr(survey.AskOne(&survey.Confirm{
					Message: fmt.Sprintf("Delete every file in %s?", target.location()),
				}, &proceed))
				if !proceed {
					continue
				}
			}

			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			_ = util.Delete(target.location())
			handleErr(filesystem.API().RemoveAll(target.location()))
			e()
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
