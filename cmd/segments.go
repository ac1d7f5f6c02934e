package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/anisan-cli/skipsync/color"
	"github.com/anisan-cli/skipsync/config"
	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/open"
	"github.com/anisan-cli/skipsync/player"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/source"
	"github.com/anisan-cli/skipsync/style"
	"github.com/anisan-cli/skipsync/util"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(segmentsCmd)
}

var segmentsCmd = &cobra.Command{
	Use:     "segments",
	Short:   "Inspect and edit segment files",
	Aliases: []string{"seg"},
}

func init() {
	segmentsCmd.AddCommand(segmentsSchemaCmd)
	segmentsSchemaCmd.SetOut(os.Stdout)
}

var segmentsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of segment files",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(source.Schema()))
	},
}

func init() {
	segmentsCmd.AddCommand(segmentsValidateCmd)
}

var segmentsValidateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check segment files for errors",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var failed int
		for _, path := range args {
			f, err := source.ReadFile(path)
			if err != nil {
				failed++
				fmt.Printf("%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), err)
				continue
			}
			fmt.Printf("%s %s: %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path, util.Quantify(len(f.Segments), "segment", "segments"))
		}

		if failed > 0 {
			handleErr(fmt.Errorf("%s invalid", util.Quantify(failed, "file is", "files are")))
		}
	},
}

func init() {
	segmentsCmd.AddCommand(segmentsListCmd)
	animeFlags(segmentsListCmd)
	segmentsListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	segmentsListCmd.SetOut(os.Stdout)
}

var segmentsListCmd = &cobra.Command{
	Use:   "list [media]",
	Short: "Look up the segments skipsync would use for media",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req := source.Request{Media: args[0]}

		var err error
		req.MALID, req.Episode, _, err = resolveAnime(cmd)
		handleErr(err)

		sources := []source.Source{source.Files{Dir: where.Segments()}}
		if req.MALID > 0 {
			sources = append(sources, aniskipSource())
		}

		var results []source.Result
		err = source.Lookup(context.Background(), req, func(r source.Result, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", style.Fg(color.Red)(icon.Get(icon.Fail)), r.Source, err)
				return
			}
			if r.Found {
				results = append(results, r)
			}
		}, sources...)
		if len(results) == 0 {
			handleErr(err)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(results))
			return
		}

		if len(results) == 0 {
			cmd.Println(style.Faint("No segments found for " + req.Media))
			return
		}

		for _, r := range results {
			cmd.Println(style.New().Bold(true).Foreground(color.HiPurple).Render(r.Source))
			for _, seg := range r.Segments {
				cmd.Printf("  %s %s\n", player.Describe(seg), style.Faint(string(seg.ID)))
			}
		}
	},
}

func init() {
	segmentsCmd.AddCommand(segmentsAddCmd)
	segmentsAddCmd.Flags().Float64P("start", "s", 0, "Start of the segment in seconds")
	segmentsAddCmd.Flags().Float64P("end", "e", 0, "End of the segment in seconds")
	segmentsAddCmd.Flags().StringP("category", "c", "", "Category of the segment")
	segmentsAddCmd.Flags().String("id", "", "Replace the segment with this id")
	lo.Must0(segmentsAddCmd.MarkFlagRequired("end"))
	lo.Must0(segmentsAddCmd.RegisterFlagCompletionFunc("category", completionCategories))
}

var segmentsAddCmd = &cobra.Command{
	Use:   "add [media]",
	Short: "Save a segment for media in the segments directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		category := lo.Must(cmd.Flags().GetString("category"))
		if category == "" {
			category = viper.GetString(key.SubmitCategory)
		}
		c, err := segment.ParseCategory(category)
		handleErr(err)

		seg := segment.Segment{
			ID:       segment.ID(lo.Must(cmd.Flags().GetString("id"))),
			Start:    lo.Must(cmd.Flags().GetFloat64("start")),
			End:      lo.Must(cmd.Flags().GetFloat64("end")),
			Category: c,
		}
		if seg.ID == "" {
			seg.ID = segment.ID(fmt.Sprintf("%s-%.0f", seg.Category, seg.Start))
		}
		if seg.End <= seg.Start {
			handleErr(errors.New("end must be after start"))
		}

		path, err := source.Files{Dir: where.Segments()}.Save(source.Request{Media: args[0]}, seg)
		handleErr(err)
		fmt.Printf("%s saved %s to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), player.Describe(seg), path)
	},
}

func init() {
	segmentsCmd.AddCommand(segmentsEditCmd)
}

var segmentsEditCmd = &cobra.Command{
	Use:   "edit [media]",
	Short: "Open the segment file of media in $EDITOR, creating it when missing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req := source.Request{Media: args[0]}
		paths := source.Files{Dir: where.Segments()}.Paths(req)
		if len(paths) == 0 {
			handleErr(fmt.Errorf("no segment file location for %q", req.Media))
		}

		path, ok := lo.Find(paths, func(p string) bool {
			exists, _ := filesystem.API().Exists(p)
			return exists
		})
		if !ok {
			path = paths[len(paths)-1]
			handleErr(source.WriteFile(path, source.File{Video: req.Media, Segments: []segment.Segment{}}))
		}

		handleErr(open.Editor(path))

		f, err := source.ReadFile(path)
		handleErr(err)
		fmt.Printf("%s %s: %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path, util.Quantify(len(f.Segments), "segment", "segments"))
	},
}

func init() {
	segmentsCmd.AddCommand(segmentsCategoriesCmd)
	segmentsCategoriesCmd.SetOut(os.Stdout)
}

var segmentsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List segment categories and what happens when playback reaches them",
	Run: func(cmd *cobra.Command, args []string) {
		actions := config.CoordinatorOptions().CategoryActions
		locked := config.Categories(key.SkipLockedCategories)

		for _, c := range segment.Categories() {
			action, ok := actions[c]
			if !ok {
				action = c.DefaultAction()
			}

			line := fmt.Sprintf("%s %s", style.Fg(color.Purple)(fmt.Sprintf("%-16s", c)), style.Fg(color.Yellow)(string(action)))
			if lo.Contains(locked, c) {
				line += " " + icon.Get(icon.Lock)
			}
			cmd.Println(line)
		}
	},
}
