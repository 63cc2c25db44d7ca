// Package tui provides a Bubble Tea terminal version of the Perch start page.
// Mouse presses, motion and releases feed the same gesture engine the web
// page uses; the keyboard offers the same operations without a mouse.
package tui
