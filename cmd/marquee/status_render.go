package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"marquee/internal/audit"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 26
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "FAIL"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func checkStatusKind(status audit.Status) statusKind {
	switch status {
	case audit.StatusPass:
		return statusOK
	case audit.StatusFlag:
		return statusWarn
	case audit.StatusFail:
		return statusError
	default:
		return statusInfo
	}
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

// renderReport prints the verdict, every check, and the flag counts by kind.
func renderReport(w io.Writer, report *audit.Report, colorize bool) {
	for _, line := range renderSectionHeader("Audit", colorize) {
		fmt.Fprintln(w, line)
	}
	verdict := statusOK
	if report.Failed() {
		verdict = statusError
	}
	fmt.Fprintln(w, renderStatusLine("verdict", verdict, string(report.Verdict), colorize))
	fmt.Fprintln(w, renderStatusLine("run", statusInfo, report.RunID, colorize))
	fmt.Fprintln(w, renderStatusLine("rules", statusInfo, report.RulesVersion, colorize))
	t := report.Totals
	fmt.Fprintln(w, renderStatusLine("records", statusInfo,
		fmt.Sprintf("%d read, %d malformed", t.Records, t.MalformedRecords), colorize))
	fmt.Fprintln(w, renderStatusLine("reviews", statusInfo,
		fmt.Sprintf("%d canonical across %d shows, %d merged, %d scored", t.Reviews, t.Shows, t.MergedReviews, t.Scored), colorize))
	fmt.Fprintln(w)

	for _, line := range renderSectionHeader("Checks", colorize) {
		fmt.Fprintln(w, line)
	}
	for _, c := range report.Checks {
		msg := c.Message
		if msg == "" {
			msg = fmt.Sprintf("%d/%d (%.3f, limit %.3f)", c.Count, c.Total, c.Ratio, c.Threshold)
		}
		fmt.Fprintln(w, renderStatusLine(c.Name, checkStatusKind(c.Status), msg, colorize))
	}

	if len(report.Groups) == 0 {
		return
	}
	fmt.Fprintln(w)
	rows := make([][]string, 0, len(report.Groups))
	for _, g := range report.Groups {
		rows = append(rows, []string{string(g.Severity), string(g.Kind), fmt.Sprintf("%d", g.Count)})
	}
	fmt.Fprintln(w, renderTable([]string{"Severity", "Kind", "Count"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
