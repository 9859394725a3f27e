package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/mmr-tortoise/burnish/internal/model"
)

// Chars is the set of status symbols used in terminal output.
type Chars struct {
	// Ring opens the action banner.
	Ring string

	// Tidied and Unchanged mark tidy outcomes per path.
	Tidied    string
	Unchanged string

	// LintFree and LintDirty mark lint outcomes per path.
	LintFree  string
	LintDirty string

	// ExecError marks a per-path execution failure.
	ExecError string

	// Bullet prefixes entries in the consolidated error report.
	Bullet string

	// Empty prefixes informational messages like "No files found".
	Empty string
}

// FunChars is the default unicode symbol set.
var FunChars = Chars{
	Ring:      "💍",
	Tidied:    "💧",
	Unchanged: "✨",
	LintFree:  "💚",
	LintDirty: "💩",
	ExecError: "💥",
	Bullet:    "•",
	Empty:     "💤",
}

// BoringChars is the --ascii fallback.
var BoringChars = Chars{
	Ring:      ":",
	Tidied:    "*",
	Unchanged: "=",
	LintFree:  "+",
	LintDirty: "!",
	ExecError: "#",
	Bullet:    "*",
	Empty:     "_",
}

var errorHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// Printer writes status lines and reports. Its methods are safe to call
// from concurrent filter workers; each line is written under one mutex so
// parallel entries never interleave mid-line.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	chars Chars
	quiet bool
	color bool
}

// NewPrinter creates a Printer writing to out.
//
// quiet suppresses per-path success lines (failures and errors always
// print). ascii selects BoringChars and disables color; color is
// otherwise enabled only when out is a terminal.
func NewPrinter(out io.Writer, ascii, quiet bool) *Printer {
	chars := FunChars
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	if ascii {
		chars = BoringChars
		color = false
	}
	return &Printer{out: out, chars: chars, quiet: quiet, color: color}
}

// Banner prints the action opener, e.g. "💍 Tidying all files in the
// project".
func (p *Printer) Banner(action, modeDescription string) {
	p.println("%s %s %s", p.chars.Ring, action, modeDescription)
}

// Tidied reports a path the named filter modified.
func (p *Printer) Tidied(filterName, path string) {
	if p.quiet {
		return
	}
	p.println("%s Tidied by %s:    %s", p.chars.Tidied, filterName, path)
}

// Unchanged reports a path the named filter inspected without modifying.
func (p *Printer) Unchanged(filterName, path string) {
	if p.quiet {
		return
	}
	p.println("%s Unchanged by %s: %s", p.chars.Unchanged, filterName, path)
}

// Passed reports a lint-clean path.
func (p *Printer) Passed(filterName, path string) {
	if p.quiet {
		return
	}
	p.println("%s Passed %s: %s", p.chars.LintFree, filterName, path)
}

// Failed reports a lint finding, echoing whatever the tool printed.
// Failures print even in quiet mode.
func (p *Printer) Failed(filterName, path, stdout, stderr string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s Failed %s: %s\n", p.chars.LintDirty, filterName, path)
	if s := strings.TrimRight(stdout, "\n"); s != "" {
		fmt.Fprintln(p.out, s)
	}
	if s := strings.TrimRight(stderr, "\n"); s != "" {
		fmt.Fprintln(p.out, s)
	}
}

// ExecError reports a per-path execution failure. Prints even in quiet
// mode.
func (p *Printer) ExecError(filterName, path string) {
	p.println("%s error %s: %s", p.chars.ExecError, filterName, path)
}

// Message prints an informational line, e.g. "No files found".
func (p *Printer) Message(msg string) {
	p.println("%s %s", p.chars.Empty, msg)
}

// ErrorReport renders the consolidated end-of-run report for a non-empty
// error collection. Entries are grouped deterministically by path, then
// filter key. action is the present participle ("tidying" or "linting").
func (p *Printer) ErrorReport(action string, errors []model.ActionError) string {
	sorted := make([]model.ActionError, len(errors))
	copy(sorted, errors)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Filter < sorted[j].Filter
	})

	plural := ""
	if len(sorted) > 1 {
		plural = "s"
	}
	header := fmt.Sprintf("Error%s when %s files:", plural, action)
	if p.color {
		header = errorHeaderStyle.Render(header)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, ae := range sorted {
		fmt.Fprintf(&b, "  %s %s [%s]\n    %s\n", p.chars.Bullet, ae.Path, ae.Filter, ae.Message)
	}
	return b.String()
}

// Print writes an already-rendered block (such as an ErrorReport) as-is.
func (p *Printer) Print(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, s)
}

func (p *Printer) println(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}
