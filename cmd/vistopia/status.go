package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"vistopia/internal/services"
	"vistopia/internal/textutil"
	"vistopia/internal/workflow"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

// renderStatus formats "[LABEL] message", colored when colorize is set.
func renderStatus(kind statusKind, message string, colorize bool) string {
	line := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		line += " " + message
	}
	if colorize {
		return statusKindColor(kind).Sprint(line)
	}
	return line
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printReport writes the outcome of a save command.
func printReport(out io.Writer, report workflow.Report) {
	colorize := isTerminal(out)
	kind := statusOK
	switch {
	case report.Failed > 0 || len(report.Failures) > 0:
		kind = statusWarn
	case report.Saved == 0 && report.Skipped == 0:
		kind = statusInfo
	}
	summary := report.String()
	if report.Shows > 1 {
		summary = fmt.Sprintf("%d shows: %s", report.Shows, summary)
	}
	fmt.Fprintln(out, renderStatus(kind, summary, colorize))
	for _, failure := range report.Failures {
		subject := fmt.Sprintf("show %d", failure.ShowID)
		if failure.SortNumber > 0 {
			subject = fmt.Sprintf("show %d episode %d", failure.ShowID, failure.SortNumber)
		}
		label := textutil.JoinNonEmpty(" ", subject, quoteTitle(failure.Title))
		fmt.Fprintf(out, "  %s: %s\n", label, services.Hint(failure.Err))
	}
}

func quoteTitle(title string) string {
	title = strings.TrimSpace(title)
	return textutil.Ternary(title == "", "", "「"+title+"」")
}

func yesNo(value bool) string {
	return textutil.Ternary(value, "yes", "no")
}
