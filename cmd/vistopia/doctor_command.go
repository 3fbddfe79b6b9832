package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vistopia/internal/deps"
	"vistopia/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check API access, directories, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			tools := preflight.CheckSystemDeps(cfg)

			rows := make([][]string, 0, len(results)+len(tools))
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				rows = append(rows, []string{r.Name, renderStatus(kind, "", colorize), r.Detail})
			}
			for _, tool := range tools {
				rows = append(rows, []string{tool.Name, renderStatus(toolStatus(tool), "", colorize), toolDetail(tool)})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Check"},
				{header: "Status"},
				{header: "Detail", maxWidth: descriptionWidth},
			}, rows))

			if !preflight.AllPassed(results) || deps.MissingRequired(tools) {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

func toolStatus(s deps.Status) statusKind {
	switch {
	case s.Available:
		return statusOK
	case s.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func toolDetail(s deps.Status) string {
	if s.Available {
		return fmt.Sprintf("%s (%s)", s.Path, s.Description)
	}
	return fmt.Sprintf("%s; %s", s.Detail, s.Description)
}
