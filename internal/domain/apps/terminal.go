package apps

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/utils"
	"github.com/microcosm-cc/bluemonday"
)

// Terminal limits
const (
	MaxHistory     = 100
	MaxOutputLines = 500
	Version        = "StellarFlux OS v0.1.0"
	HomeDir        = "/home/operator"
	UnlockToken    = "stellar-key"
)

// LogSource supplies the static log database
type LogSource interface {
	Logs() []types.LogEntry
	Log(id string) (types.LogEntry, bool)
}

// ExecResult is the outcome of one terminal line
type ExecResult struct {
	Lines    []string `json:"lines"`
	Cleared  bool     `json:"cleared,omitempty"`
	Unlocked bool     `json:"unlocked,omitempty"`
}

// TerminalView is the rendered terminal body
type TerminalView struct {
	Lines   []string `json:"lines"`
	History []string `json:"history"`
	Prompt  string   `json:"prompt"`
}

// Terminal interprets the desktop's command grammar
type Terminal struct {
	lifecycle

	logs      LogSource
	store     *persist.Local
	identity  string
	onUnlock  UnlockFunc
	sanitizer *bluemonday.Policy

	mu      sync.Mutex
	output  *LineBuffer
	history []string
}

// NewTerminal creates a terminal. identity is reported by whoami.
func NewTerminal(logs LogSource, store *persist.Local, identity string, onUnlock UnlockFunc) *Terminal {
	return &Terminal{
		logs:      logs,
		store:     store,
		identity:  identity,
		onUnlock:  onUnlock,
		sanitizer: bluemonday.StrictPolicy(),
		output:    NewLineBuffer(MaxOutputLines),
	}
}

// Mount restores history and output, printing the banner on first use
func (t *Terminal) Mount(ctx context.Context) error {
	if !t.mount() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var history []string
	if t.store != nil && t.store.Load(persist.KeyTerminalHistory, &history) {
		t.history = trimHistory(history)
	}

	var output []string
	if t.store != nil && t.store.Load(persist.KeyTerminalOutput, &output) && len(output) > 0 {
		t.output.Reset()
		t.output.Append(output...)
	} else if t.output.Len() == 0 {
		t.output.Append(Version, `type "help" for available commands`, "")
	}
	return nil
}

// Suspend is a no-op; the terminal has no background work
func (t *Terminal) Suspend() { t.suspend() }

// Resume is a no-op; the terminal has no background work
func (t *Terminal) Resume() { t.resume() }

// Unmount flushes pending writes
func (t *Terminal) Unmount() {
	if t.unmount() && t.store != nil {
		t.store.Flush()
	}
}

// View returns the buffered output and history
func (t *Terminal) View() interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return TerminalView{
		Lines:   t.output.Lines(),
		History: append([]string(nil), t.history...),
		Prompt:  ">",
	}
}

// History returns a copy of the command history
func (t *Terminal) History() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.history...)
}

// Exec runs one input line
func (t *Terminal) Exec(line string) ExecResult {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ExecResult{}
	}
	if err := utils.ValidateCommand(trimmed); err != nil {
		return ExecResult{Lines: []string{"error: " + err.Error()}}
	}

	fields := strings.Fields(trimmed)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	var result ExecResult
	switch cmd {
	case "help":
		result.Lines = []string{
			"available commands:",
			"  help           - shows this menu",
			"  scan           - list available logs",
			"  readlog <id>   - read a log by id",
			"  clear          - clear terminal",
			"  system         - system status",
			"  uname          - os version",
			"  whoami         - current operator",
			"  pwd            - working directory",
			"  echo <text>    - print text",
			"  " + UnlockToken + "    - unlock secret",
		}
	case "scan":
		result.Lines = []string{"available logs:"}
		for _, entry := range t.logs.Logs() {
			result.Lines = append(result.Lines, fmt.Sprintf("  %-15s - %s", entry.ID, entry.Title))
		}
	case "readlog":
		result.Lines = t.readLog(args)
	case "clear":
		result.Cleared = true
	case "system":
		result.Lines = []string{Version + " | Stable | 8GB RAM | All systems nominal"}
	case "uname":
		result.Lines = []string{Version}
	case "whoami":
		who := t.identity
		if who == "" {
			who = "guest"
		}
		result.Lines = []string{who}
	case "pwd":
		result.Lines = []string{HomeDir}
	case "echo":
		text := strings.TrimSpace(trimmed[len(fields[0]):])
		result.Lines = []string{html.UnescapeString(t.sanitizer.Sanitize(text))}
	case UnlockToken:
		result.Lines = []string{"✓ SECRET UNLOCKED", "accessing hidden subroutine..."}
		result.Unlocked = true
	default:
		result.Lines = []string{fmt.Sprintf("command not recognized: %q", cmd)}
	}

	t.record(trimmed, result)

	if result.Unlocked && t.onUnlock != nil {
		t.onUnlock("")
	}
	return result
}

func (t *Terminal) readLog(args []string) []string {
	if len(args) == 0 {
		return []string{"error: missing log id"}
	}
	entry, ok := t.logs.Log(args[0])
	if !ok {
		return []string{fmt.Sprintf("error: log %q not found", args[0])}
	}
	return strings.Split(entry.Content, "\n")
}

// record appends the line to history and the result to the output buffer
func (t *Terminal) record(line string, result ExecResult) {
	t.mu.Lock()
	t.history = trimHistory(append(t.history, line))
	history := append([]string(nil), t.history...)

	if result.Cleared {
		t.output.Reset()
	} else {
		t.output.Append("> " + line)
		t.output.Append(result.Lines...)
	}
	output := t.output.Lines()
	t.mu.Unlock()

	if t.store != nil {
		t.store.SaveDebounced(persist.KeyTerminalHistory, history)
		t.store.SaveDebounced(persist.KeyTerminalOutput, output)
	}
}

func trimHistory(history []string) []string {
	if len(history) > MaxHistory {
		return history[len(history)-MaxHistory:]
	}
	return history
}
