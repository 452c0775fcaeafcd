// Package ui formats the command summaries printed by secrets-manager.
//
// Formatters color text when the terminal allows it. With NO_COLOR set or
// no color support, Highlight falls back to 'quotes' and Muted to
// (parentheses); the others print the text unchanged.
//
//	ui.Mark(true) + " Exported " + ui.Highlight.Sprint(profile) + " to " + ui.Path.Sprint(target)
//	ui.Hint("Discard it and start over.")
package ui
