// Package ui implements an interactive terminal star picker using bubbletea's Elm architecture.
//
// The [Model] presents the report's albums in a filterable list where enter
// toggles an album's star and "s" saves the result. The caller reads the
// toggled records back with [Model.Records] once the program exits, and
// [Model.Saved] distinguishes a save from a plain quit.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, s, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
