package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// terminal wraps liner with persisted input history.
type terminal struct {
	line        *liner.State
	historyFile string
}

func newTerminal(historyFile string) *terminal {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	t := &terminal{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return t
}

// ReadLine reads one line and records non-empty input in the history.
func (t *terminal) ReadLine(prompt string) (string, error) {
	input, err := t.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		t.line.AppendHistory(input)
	}
	return input, nil
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (t *terminal) Confirm(question string) bool {
	answer, err := t.line.Prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (t *terminal) Close() {
	if err := os.MkdirAll(filepath.Dir(t.historyFile), 0o755); err == nil {
		if f, err := os.OpenFile(t.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = t.line.WriteHistory(f)
			f.Close()
		}
	}
	t.line.Close()
}
