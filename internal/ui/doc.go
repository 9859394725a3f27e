// Package ui renders burnish's terminal output: the action banner,
// per-path status lines, and the consolidated end-of-run error report.
//
// Output uses a small set of unicode status symbols with an ASCII
// fallback (--ascii). Colors come from lipgloss and are enabled only when
// stdout is a terminal.
package ui
