package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vistopia/internal/services"
	"vistopia/internal/textutil"
)

const descriptionWidth = 60

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var keyword string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search shows by keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureServices(); err != nil {
				return err
			}
			results, err := ctx.cache.Search(ctx.runContext(cmd.Context()), keyword)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "No results")
					return nil
				}
				return fmt.Errorf("search: %w", err)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				if !r.IsContent() {
					continue
				}
				rows = append(rows, []string{
					strconv.FormatInt(int64(r.ID), 10),
					r.Author,
					titleWithSubtitle(r.Title, r.Subtitle),
					strings.TrimSpace(r.ShareDesc),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{header: "ID", align: alignRight},
				{header: "Author"},
				{header: "Title"},
				{header: "Description", maxWidth: descriptionWidth},
			}, rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Search keyword")
	_ = cmd.MarkFlagRequired("keyword")
	return cmd
}

func newSubscriptionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subscriptions",
		Short: "List the shows your account subscribes to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureServices(); err != nil {
				return err
			}
			subs, err := ctx.cache.Subscriptions(ctx.runContext(cmd.Context()))
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "No subscriptions (check the API token)")
					return nil
				}
				return fmt.Errorf("list subscriptions: %w", err)
			}
			rows := make([][]string, 0, len(subs))
			for _, sub := range subs {
				rows = append(rows, []string{
					strconv.FormatInt(int64(sub.ContentID), 10),
					titleWithSubtitle(sub.Title, sub.Subtitle),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{header: "Content ID", align: alignRight},
				{header: "Title"},
			}, rows))
			return nil
		},
	}
}

func newShowContentCommand(ctx *commandContext) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "show-content",
		Short: "List the episodes of a show",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureServices(); err != nil {
				return err
			}
			runCtx := services.WithShowID(ctx.runContext(cmd.Context()), id)
			catalog, err := ctx.cache.Catalog(runCtx, id)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "Show %d not found\n", id)
					return nil
				}
				return fmt.Errorf("load catalog %d: %w", id, err)
			}
			rows := make([][]string, 0, catalog.TotalArticles())
			for _, article := range catalog.Articles() {
				rows = append(rows, []string{
					strconv.Itoa(article.SortNumber.Int()),
					article.Title,
					article.DurationStr,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, textutil.JoinNonEmpty(" · ", catalog.Title, catalog.Author, catalog.Type))
			fmt.Fprintln(out, renderTable([]column{
				{header: "#", align: alignRight},
				{header: "Title"},
				{header: "Duration", align: alignRight},
			}, rows))
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Show content id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func titleWithSubtitle(title, subtitle string) string {
	return textutil.JoinNonEmpty(": ", title, subtitle)
}
