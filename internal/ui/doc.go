// Package ui implements the eln notebook browser on Bubble Tea.
//
// # Overview
//
// The browser has two views. The notebook view lists the notebooks the
// session can see; enter exports the selected notebook and switches to the
// records view, a scrollable viewport of records, modules and entries.
// Requests run as tea.Cmd functions against eln.NotebookService, so the
// model never blocks and can be driven in tests with a fake service.
//
// # Preferences
//
// Opening a notebook stores it as last_notebook and cycling the theme stores
// the theme name; both go through the prefs package. The next session
// starts with the cursor on the remembered notebook.
//
// # Files
//
//   - app.go: Model, Update loop, commands and Run
//   - views.go: notebook list and record rendering
//   - header.go: status and command bars
//   - help.go: help overlay built from the key map
//   - keys.go, theme.go, style_helpers.go: bindings and palette
package ui
