package normalize

import (
	"fmt"
	"strings"
	"sync"
)

// Trace collects the human-readable log of a pipeline run. It is owned by the
// caller and only ever appended to. A nil Trace discards everything.
type Trace struct {
	mu    sync.Mutex
	lines []string
}

// Addf appends one formatted line.
func (t *Trace) Addf(format string, args ...any) {
	if t == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	t.mu.Lock()
	t.lines = append(t.lines, line)
	t.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (t *Trace) Lines() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *Trace) String() string {
	return strings.Join(t.Lines(), "\n")
}

func (t *Trace) appendTrace(other *Trace) {
	if t == nil || other == nil {
		return
	}
	lines := other.Lines()
	t.mu.Lock()
	t.lines = append(t.lines, lines...)
	t.mu.Unlock()
}
