package types

// Descriptor describes one launchable application.
// The core only reads it; content is produced by the catalog's factories.
type Descriptor struct {
	ID     string `json:"id" yaml:"id" toml:"id"`
	Name   string `json:"name" yaml:"name" toml:"name"`
	Icon   string `json:"icon" yaml:"icon" toml:"icon"`
	Docked bool   `json:"docked" yaml:"docked" toml:"docked"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden" toml:"hidden"`
}

// LogEntry is a static system log exposed by the logs viewer and terminal
type LogEntry struct {
	ID      string `json:"id" yaml:"id" toml:"id"`
	Title   string `json:"title" yaml:"title" toml:"title"`
	Content string `json:"content" yaml:"content" toml:"content"`
}

// Manifest is the seed document for the application catalog
type Manifest struct {
	Apps []Descriptor `json:"apps" yaml:"apps" toml:"apps"`
	Logs []LogEntry   `json:"logs" yaml:"logs" toml:"logs"`
}
