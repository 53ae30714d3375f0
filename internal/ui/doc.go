// Package ui provides theme and color support for the command-line output:
// ANSI escape codes for inline coloring and lipgloss styles for the report
// table. The theme comes from --theme; --no-color and the NO_COLOR
// environment variable turn colors off.
package ui
