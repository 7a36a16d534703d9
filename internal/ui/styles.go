// Package ui styles CLI output.
package ui

import "fmt"

// ANSI256 color codes, Ayu palette.
const (
	colorAccent  = 74  // blue: meetings, ids
	colorCmd     = 250 // light gray: command names
	colorMuted   = 245 // gray: labels, secondary text
	colorWarn    = 203 // red: overdue tasks
	colorOK      = 114 // green: healthy, resolved
	colorHighlit = 221 // yellow: highlighted nodes
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderCommand returns s styled as a command name.
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderMuted returns s in the muted color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderWarn returns s in the warning color.
func RenderWarn(s string) string { return paint(colorWarn, s) }

// RenderOK returns s in the success color.
func RenderOK(s string) string { return paint(colorOK, s) }

// RenderHighlight returns s in the highlight color.
func RenderHighlight(s string) string { return paint(colorHighlit, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
