// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for the reading shelf:
//  1. [ShelfView] : Browse the user's books with their progress bars
//  2. [DetailView] : Adjust pages read for the selected book
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Changes made in other tabs or pushed by the remote store arrive through an
// update channel and re-render the shelf without user interaction.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
