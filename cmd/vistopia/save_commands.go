package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vistopia/internal/config"
	"vistopia/internal/episodes"
	"vistopia/internal/services"
	"vistopia/internal/workflow"
)

// episodeFlags are shared by every save command.
type episodeFlags struct {
	episodes string
	index    bool
}

func (f *episodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.episodes, "episode-id", "", "Episodes to save by sort number, e.g. 1-3,6,8 (default all)")
	cmd.Flags().BoolVar(&f.index, "index", false, "Prefix file names with the zero-padded track number")
}

func (f *episodeFlags) resolve(cmd *cobra.Command, cfg *config.Config) (episodes.Set, bool, error) {
	set, err := episodes.Parse(f.episodes)
	if err != nil {
		return episodes.Set{}, false, err
	}
	index := cfg.Download.PrefixIndex
	if cmd.Flags().Changed("index") {
		index = f.index
	}
	return set, index, nil
}

// archiverFlags select the single-file archiver for transcripts.
type archiverFlags struct {
	binary     string
	cookieFile string
	format     string
}

func (f *archiverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "html", "Transcript format without the archiver: html or text")
	cmd.Flags().StringVar(&f.binary, "single-file-exec-path", "", "Archive transcript pages with this single-file executable")
	cmd.Flags().StringVar(&f.cookieFile, "cookie-file-path", "", "Browser cookies file passed to the archiver")
}

// archiveOptions returns the archiver settings, or a zero value when the
// archiver was not requested.
func (f *archiverFlags) archiveOptions(cmd *cobra.Command, cfg *config.Config) (workflow.ArchiveOptions, error) {
	if !cmd.Flags().Changed("single-file-exec-path") {
		return workflow.ArchiveOptions{}, nil
	}
	binary := strings.TrimSpace(f.binary)
	if binary == "" {
		binary = strings.TrimSpace(cfg.Archiver.Binary)
	}
	if binary == "" {
		return workflow.ArchiveOptions{}, services.Wrap(services.ErrValidation, "cli", "archive",
			"--single-file-exec-path is empty and archiver.binary is not set", nil)
	}
	cookie := cfg.Archiver.CookieFile
	if value := strings.TrimSpace(f.cookieFile); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return workflow.ArchiveOptions{}, fmt.Errorf("resolve cookie file: %w", err)
		}
		cookie = expanded
	}
	if cookie == "" {
		return workflow.ArchiveOptions{}, services.Wrap(services.ErrValidation, "cli", "archive",
			"--cookie-file-path (or archiver.cookie_file) is required with --single-file-exec-path", nil)
	}
	return workflow.ArchiveOptions{
		Binary:     binary,
		CookieFile: cookie,
		Workers:    cfg.Archiver.Workers,
	}, nil
}

func newSaveShowCommand(ctx *commandContext) *cobra.Command {
	var (
		id      int64
		ep      episodeFlags
		noTag   bool
		noCover bool
	)
	cmd := &cobra.Command{
		Use:   "save-show",
		Short: "Download the audio or video episodes of a show",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureServices(); err != nil {
				return err
			}
			set, index, err := ep.resolve(cmd, ctx.config)
			if err != nil {
				return err
			}
			report, err := ctx.manager.SaveShow(ctx.runContext(cmd.Context()), id, workflow.ShowOptions{
				Episodes:    set,
				NoTag:       noTag || !ctx.config.Download.Tag,
				NoCover:     noCover || !ctx.config.Download.Cover,
				PrefixIndex: index,
			})
			if err != nil {
				return fmt.Errorf("save show %d: %w", id, err)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Show content id")
	_ = cmd.MarkFlagRequired("id")
	ep.register(cmd)
	cmd.Flags().BoolVar(&noTag, "no-tag", false, "Do not write ID3 tags")
	cmd.Flags().BoolVar(&noCover, "no-cover", false, "Do not embed cover art")
	return cmd
}

func newSaveTranscriptCommand(ctx *commandContext) *cobra.Command {
	var (
		id  int64
		ep  episodeFlags
		arc archiverFlags
	)
	cmd := &cobra.Command{
		Use:   "save-transcript",
		Short: "Save the transcript pages of a show",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureServices(); err != nil {
				return err
			}
			set, index, err := ep.resolve(cmd, ctx.config)
			if err != nil {
				return err
			}
			archive, err := arc.archiveOptions(cmd, ctx.config)
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd.Context())

			var report workflow.Report
			if archive.Binary != "" {
				archive.Episodes = set
				archive.PrefixIndex = index
				report, err = ctx.manager.SaveTranscriptWithSingleFile(runCtx, id, archive)
			} else {
				format, ferr := workflow.ParseFormat(arc.format)
				if ferr != nil {
					return ferr
				}
				report, err = ctx.manager.SaveTranscript(runCtx, id, workflow.TranscriptOptions{
					Episodes:    set,
					PrefixIndex: index,
					Format:      format,
				})
			}
			if err != nil {
				return fmt.Errorf("save transcripts of show %d: %w", id, err)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Show content id")
	_ = cmd.MarkFlagRequired("id")
	ep.register(cmd)
	arc.register(cmd)
	return cmd
}

func newBatchSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		idList        string
		subscriptions bool
		transcript    bool
		noAudio       bool
		noTag         bool
		noCover       bool
		ep            episodeFlags
		arc           archiverFlags
	)
	cmd := &cobra.Command{
		Use:   "batch-save",
		Short: "Save several shows in one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (idList == "") == !subscriptions {
				return services.Wrap(services.ErrValidation, "cli", "batch-save", "specify exactly one of --ids or --subscriptions", nil)
			}
			if noAudio && !transcript {
				return services.Wrap(services.ErrValidation, "cli", "batch-save", "--no-audio without --transcript leaves nothing to save", nil)
			}
			if err := ctx.ensureServices(); err != nil {
				return err
			}
			set, index, err := ep.resolve(cmd, ctx.config)
			if err != nil {
				return err
			}
			archive, err := arc.archiveOptions(cmd, ctx.config)
			if err != nil {
				return err
			}
			format, err := workflow.ParseFormat(arc.format)
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd.Context())

			var ids []int64
			if subscriptions {
				ids, err = ctx.manager.SubscribedIDs(runCtx)
			} else {
				ids, err = parseIDs(idList)
			}
			if err != nil {
				return err
			}

			report, err := ctx.manager.BatchSave(runCtx, ids, workflow.BatchOptions{
				Episodes:    set,
				PrefixIndex: index,
				NoAudio:     noAudio,
				Transcript:  transcript,
				NoTag:       noTag || !ctx.config.Download.Tag,
				NoCover:     noCover || !ctx.config.Download.Cover,
				Format:      format,
				Archive:     archive,
			})
			if err != nil {
				return fmt.Errorf("batch save: %w", err)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&idList, "ids", "", "Comma-separated show content ids")
	cmd.Flags().BoolVar(&subscriptions, "subscriptions", false, "Save every subscribed show")
	cmd.Flags().BoolVar(&transcript, "transcript", false, "Also save transcripts")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "Skip audio and video episodes")
	cmd.Flags().BoolVar(&noTag, "no-tag", false, "Do not write ID3 tags")
	cmd.Flags().BoolVar(&noCover, "no-cover", false, "Do not embed cover art")
	ep.register(cmd)
	arc.register(cmd)
	return cmd
}

// parseIDs reads a comma-separated list of positive content ids, keeping
// order and dropping duplicates.
func parseIDs(value string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil || id <= 0 {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse ids", fmt.Sprintf("invalid content id %q", token), nil)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, services.Wrap(services.ErrValidation, "cli", "parse ids", "no content ids given", nil)
	}
	return ids, nil
}
