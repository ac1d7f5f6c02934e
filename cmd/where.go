package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/skipsync/color"
	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/source"
	"github.com/anisan-cli/skipsync/style"
	"github.com/anisan-cli/skipsync/util"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is a directory skipsync uses and the flag that prints only its path.
type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
	// summary describes the contents of the directory, if anything is worth saying.
	summary func(dir string) mo.Option[string]
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false, configSummary},
	{"Segments", where.Segments, "segments", mo.Some("s"), false, countSummary(hasSuffix(source.FileExt), "segment file", "segment files")},
	{"Logs", where.Logs, "logs", mo.Some("l"), false, countSummary(hasSuffix(".log"), "log file", "log files")},
	{"Cache", where.Cache, "cache", mo.None[string](), true, countSummary(func(string) bool { return true }, "cached answer", "cached answers")},
	{"Temp", where.Temp, "temp", mo.None[string](), true, countSummary(hasSuffix(".sock"), "mpv socket", "mpv sockets")},
}

func hasSuffix(suffix string) func(string) bool {
	return func(name string) bool { return strings.HasSuffix(name, suffix) }
}

func configSummary(string) mo.Option[string] {
	if exists, _ := filesystem.API().Exists(configFile()); !exists {
		return mo.Some("no " + filepath.Base(configFile()) + ", using defaults")
	}
	return mo.None[string]()
}

// countSummary counts the files in a directory that match.
func countSummary(match func(name string) bool, singular, plural string) func(string) mo.Option[string] {
	return func(dir string) mo.Option[string] {
		entries, err := filesystem.API().ReadDir(dir)
		if err != nil {
			return mo.None[string]()
		}
		n := lo.CountBy(entries, func(e os.FileInfo) bool {
			return !e.IsDir() && match(e.Name())
		})
		return mo.Some(util.Quantify(n, singular, plural))
	}
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if short, ok := n.argShort.Get(); ok {
			whereCmd.Flags().BoolP(n.argLong, short, false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where skipsync keeps its config, segments and logs",
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(n.argLong)) {
				cmd.Println(n.where())
				return
			}
		}

		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render
		shown := lo.Reject(wherePaths, func(t *whereTarget, _ int) bool { return t.hidden })

		blocks := lo.Map(shown, func(n *whereTarget, _ int) string {
			dir := n.where()
			lines := []string{
				headerStyle(n.name+"?") + " " + style.Fg(color.Yellow)("--"+n.argLong),
				dir,
			}
			if s, ok := n.summary(dir).Get(); ok {
				lines = append(lines, style.Faint(s))
			}
			return strings.Join(lines, "\n")
		})
		cmd.Println(strings.Join(blocks, "\n\n"))
	},
}
