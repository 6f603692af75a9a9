// Package telemetry records pipeline events as JSON lines and carries turn
// IDs through contexts. Emission is off unless enabled by environment.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const eventsFile = "events.jsonl"

var (
	emitMu sync.Mutex
	seq    uint64
)

// Emit appends one event to <ArtifactsDir>/events.jsonl when observation is
// enabled. Besides fields, each line carries event, time (UTC RFC3339Nano)
// and seq, which increases by one per emitted event within the process.
// Failures are reported on stderr and otherwise ignored.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	emitMu.Lock()
	defer emitMu.Unlock()

	seq++
	line, err := encodeEvent(name, seq, time.Now(), fields)
	if err != nil {
		warn("marshal "+name, err)
		return
	}
	if err := appendLine(filepath.Join(ArtifactsDir(), eventsFile), line); err != nil {
		warn("append "+name, err)
	}
}

func encodeEvent(name string, n uint64, at time.Time, fields map[string]any) ([]byte, error) {
	m := maps.Clone(fields)
	if m == nil {
		m = make(map[string]any, 3)
	}
	m["event"] = name
	m["time"] = at.UTC().Format(time.RFC3339Nano)
	m["seq"] = n
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func appendLine(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.Write(line)
	return errors.Join(werr, f.Close())
}

func warn(op string, err error) {
	fmt.Fprintf(os.Stderr, "telemetry: %s: %v\n", op, err)
}
