package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anisan-cli/skipsync/anilist"
	"github.com/anisan-cli/skipsync/aniskip"
	"github.com/anisan-cli/skipsync/config"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/internal/cache"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/session"
	"github.com/anisan-cli/skipsync/source"
	"github.com/anisan-cli/skipsync/style"
	"github.com/anisan-cli/skipsync/util"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("socket", "s", "", "Attach to an mpv started with --input-ipc-server instead of starting one")
	watchCmd.Flags().StringP("title", "t", "", "Media title shown by mpv")
	animeFlags(watchCmd)

	watchCmd.Flags().StringSliceP("lock", "l", []string{}, "Categories that are never skipped automatically in this session")
	lo.Must0(watchCmd.RegisterFlagCompletionFunc("lock", completionCategories))

	watchCmd.Flags().StringP("segments-dir", "d", "", "Directory with segment files")
	lo.Must0(viper.BindPFlag(key.SegmentsDir, watchCmd.Flags().Lookup("segments-dir")))

	watchCmd.Flags().Bool("aniskip", true, "Fetch segments from AniSkip")
	lo.Must0(viper.BindPFlag(key.AniskipEnable, watchCmd.Flags().Lookup("aniskip")))

	watchCmd.Flags().Duration("advance-lead", 0, "Announce segments this long before they are skipped, 0 disables it")
	lo.Must0(viper.BindPFlag(key.NoticeAdvanceLead, watchCmd.Flags().Lookup("advance-lead")))
}

var watchCmd = &cobra.Command{
	Use:   "watch [media]",
	Short: "Play media in mpv and skip its segments",
	Long: `Play media in mpv and skip its segments.

Segments are read from <media>.skipsync.json next to local files and from
<name>.json in the segments directory. With --mal-id and --episode they are
also fetched from AniSkip; --anime looks the MAL id up on AniList.

Bind keys in mpv's input.conf to control the session:
  TAB  script-message skipsync-skip
  i    script-message skipsync-lock intro
  m    script-message skipsync-mark
  p    script-message skipsync-preview`,
	Example: "  skipsync watch ~/Videos/episode-01.mkv\n  skipsync watch --mal-id 21 --episode 1 https://example.com/one-piece-1.m3u8\n  skipsync watch --socket /tmp/mpv.sock",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := watchOptions(cmd, args)
		handleErr(err)

		if opts.Socket == "" {
			opts.MPVPath = checkPlayer()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handleErr(session.Run(ctx, opts, cmd.OutOrStdout()))
	},
}

func watchOptions(cmd *cobra.Command, args []string) (session.Options, error) {
	if err := config.Validate(); err != nil {
		return session.Options{}, err
	}

	opts := session.Options{
		Socket:         lo.Must(cmd.Flags().GetString("socket")),
		Title:          lo.Must(cmd.Flags().GetString("title")),
		MPVArgs:        viper.GetStringSlice(key.PlayerArgs),
		MarkSpan:       viper.GetDuration(key.SubmitDefaultSpan),
		SampleInterval: viper.GetDuration(key.PlayerSampleInterval),
		NoticeDuration: viper.GetDuration(key.NoticeDuration),
		Coordinator:    config.CoordinatorOptions(),
		Files:          source.Files{Dir: where.Segments()},
	}

	if len(args) > 0 {
		opts.Media = args[0]
	}
	if opts.Media == "" && opts.Socket == "" {
		return opts, errors.New("media is required unless --socket is given")
	}

	var (
		err   error
		title string
	)
	if opts.MALID, opts.Episode, title, err = resolveAnime(cmd); err != nil {
		return opts, err
	}
	if opts.Title == "" {
		opts.Title = title
	}

	if opts.MarkCategory, err = segment.ParseCategory(viper.GetString(key.SubmitCategory)); err != nil {
		return opts, err
	}

	opts.Locked = config.Categories(key.SkipLockedCategories)
	for _, name := range lo.Must(cmd.Flags().GetStringSlice("lock")) {
		c, err := segment.ParseCategory(name)
		if err != nil {
			return opts, err
		}
		opts.Locked = append(opts.Locked, c)
	}
	opts.Locked = lo.Uniq(opts.Locked)

	opts.Sources = []source.Source{opts.Files}
	if viper.GetBool(key.AniskipEnable) && opts.MALID > 0 {
		opts.Sources = append(opts.Sources, aniskipSource())
	}

	return opts, nil
}

func animeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("mal-id", "m", 0, "MyAnimeList id of the anime, enables AniSkip lookups")
	cmd.Flags().StringP("anime", "a", "", "Look up the MyAnimeList id of this title on AniList")
	cmd.Flags().IntP("episode", "e", 0, "Episode number used for AniSkip lookups")
	cmd.MarkFlagsMutuallyExclusive("mal-id", "anime")
}

// resolveAnime returns the MAL id and episode given by flags, searching AniList for --anime.
// title names the episode when it was looked up.
func resolveAnime(cmd *cobra.Command) (malID, episode int, title string, err error) {
	malID = lo.Must(cmd.Flags().GetInt("mal-id"))
	name := lo.Must(cmd.Flags().GetString("anime"))
	episode = lo.Must(cmd.Flags().GetInt("episode"))

	if malID == 0 && name == "" {
		return 0, 0, "", nil
	}
	if episode <= 0 {
		return 0, 0, "", errors.New("--episode is required with --mal-id or --anime")
	}
	if name == "" {
		return malID, episode, "", nil
	}

	client := anilist.New()
	store := cache.New(where.Cache(), anilist.SearchLifetime)
	client.Cache = &store

	erase := util.PrintErasable(fmt.Sprintf("%s Searching AniList for %s...", icon.Get(icon.Progress), name))
	anime, err := client.FindClosest(cmd.Context(), name)
	erase()
	if err != nil {
		return 0, 0, "", err
	}
	if anime.IDMal == 0 {
		return 0, 0, "", fmt.Errorf("%s has no MyAnimeList id", anime.Name())
	}

	cmd.Printf("%s %s %s\n", icon.Get(icon.Success), anime.Name(), style.Faint(fmt.Sprintf("(MAL %d)", anime.IDMal)))
	return anime.IDMal, episode, fmt.Sprintf("%s - Episode %d", anime.Name(), episode), nil
}

// aniskipSource queries AniSkip for the configured types, through the cache unless it is disabled.
func aniskipSource() source.Source {
	types := lo.Map(viper.GetStringSlice(key.AniskipTypes), func(t string, _ int) aniskip.SkipType {
		return aniskip.SkipType(t)
	})

	var src source.Source = source.Aniskip{Client: aniskip.New(types...)}
	if ttl := viper.GetDuration(key.AniskipCacheTTL); ttl > 0 {
		src = source.Cached{Source: src, Cache: cache.New(where.Cache(), ttl)}
	}
	return src
}

func completionCategories(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return segment.CategoryNames(), cobra.ShellCompDirectiveNoFileComp
}
