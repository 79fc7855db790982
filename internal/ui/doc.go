// Package ui is the terminal toolkit: a Bubble Tea program that renders the
// window's sidebars, file tables and split views and reports key presses as
// native gestures.
//
// Two goroutines are involved:
//   - Toolkit lives on the UI loop. Widgets call Reload there, so it is the
//     only place that queries adapters. Each reload becomes an immutable row
//     snapshot handed to the program through an ordered outbox.
//   - Model lives on the Bubble Tea goroutine. Update routes messages through
//     a typed handler registry; gestures and overlay outcomes are posted back
//     onto the UI loop through the scheduler and never run inline.
//
// Pane state (rows, cursor, filter, viewport) is kept in internal/ui/state.
// Overlays (context menu, drag session, preview panel) are modal: while one
// is open it owns the keyboard.
package ui
