// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for song analysis:
//  1. [SearchView] : Enter a song search query
//  2. [TrackListView] : Browse matching tracks
//  3. [AnalyzeView] : Watch the spinner while lyrics are read and interpreted
//  4. [ResultView] : Scroll the structured analysis in a viewport
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Analysis runs through [tasks.AnalysisEngine] off the main loop, delivering its
// outcome as a single message when it completes.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
