// Package launcher implements the dock and the desktop-wide keyboard shortcuts.
package launcher
