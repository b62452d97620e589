package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"livestage/internal/report"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderSummary(out io.Writer, summary *report.Summary, showIssues bool) {
	colorize := shouldColorize(out)

	title := "Run Summary"
	if summary.DryRun {
		title = "Run Summary (dry run, nothing written)"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}

	rows := [][2]string{
		{"Files scanned", strconv.Itoa(summary.Scanned)},
		{"Stills / videos / others", fmt.Sprintf("%d / %d / %d", summary.Stills, summary.Videos, summary.Others)},
		{"Pairs (same dir)", strconv.Itoa(summary.SameDirPairs)},
		{"Pairs (cross dir)", strconv.Itoa(summary.CrossDirPairs)},
		{"Pairs staged", strconv.Itoa(summary.PairsStaged)},
		{"Leftovers staged", strconv.Itoa(summary.LeftoversStaged)},
		{"Duplicates skipped", strconv.Itoa(summary.DuplicateSkips)},
		{"Entry errors", strconv.Itoa(summary.EntryErrors)},
	}
	fmt.Fprintln(out, renderKeyValueTable("Metric", "Value", rows, true))

	warnings, errs := summary.Warnings(), summary.Errors()
	switch {
	case errs > 0:
		fmt.Fprintln(out, statusLine(fmt.Sprintf("%d errors, %d warnings", errs, warnings), ansiRed, colorize))
	case warnings > 0:
		fmt.Fprintln(out, statusLine(fmt.Sprintf("%d warnings", warnings), ansiYellow, colorize))
	default:
		fmt.Fprintln(out, statusLine("no issues", ansiGreen, colorize))
	}

	if showIssues && len(summary.Issues) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Issues", colorize) {
			fmt.Fprintln(out, line)
		}
		issueRows := make([][]string, 0, len(summary.Issues))
		for _, issue := range summary.Issues {
			issueRows = append(issueRows, []string{
				string(issue.Severity),
				issue.Category,
				issue.Path,
				issue.Detail,
			})
		}
		fmt.Fprintln(out, renderListTable(
			[]string{"Severity", "Category", "Path", "Detail"},
			issueRows,
		))
	} else if !showIssues && len(summary.Issues) > 0 {
		fmt.Fprintln(out, "Pass --show-issues for details.")
	}
}

func statusLine(message, color string, colorize bool) string {
	line := "  " + message
	if colorize && color != "" {
		return color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
