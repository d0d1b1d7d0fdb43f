// Package catalog holds the table of launchable applications.
//
// The table is seeded from an embedded YAML manifest (apps.yaml) and may be
// extended or overridden by a TOML file named in APPS_OVERRIDE:
//
//	[[apps]]
//	id = "notepad"
//	name = "Scratchpad"
//	icon = "✎"
//	docked = true
//
// The window registry consults Has before opening a window; ids missing from
// the catalog are ignored.
package catalog
