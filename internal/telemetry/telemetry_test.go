package telemetry_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/petasbytes/go-astra/internal/telemetry"
)

// readEvents returns every JSON object in dir/events.jsonl.
func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()

	var out []map[string]any
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan events: %v", err)
	}
	return out
}

func TestEmit_Gating(t *testing.T) {
	// Child process sees ASTRA_OBSERVE_JSON=0 at startup.
	out := runProbe(t, "TestEmitGatingProbe", map[string]string{"ASTRA_OBSERVE_JSON": "0"})
	if !strings.Contains(out, "no_file=true") {
		t.Fatalf("expected no_file=true, got output:\n%s", out)
	}
}

func TestEmitGatingProbe(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	telemetry.Emit("test_event", map[string]any{"foo": "bar"})
	if _, err := os.Stat(".astra/events.jsonl"); os.IsNotExist(err) {
		println("no_file=true")
	} else {
		println("no_file=false")
	}
}

func TestEmit_HappyPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASTRA_ARTIFACTS_DIR", dir)
	t.Setenv("ASTRA_OBSERVE_JSON", "1")

	telemetry.Emit("summary_written", map[string]any{"turn_id": "t1", "history_records": 3})

	events := readEvents(t, dir)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev["event"] != "summary_written" || ev["turn_id"] != "t1" || ev["history_records"] != float64(3) {
		t.Fatalf("unexpected event: %#v", ev)
	}
	ts, ok := ev["time"].(string)
	if !ok {
		t.Fatal("expected time field as string")
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("time field not valid RFC3339Nano: %v", err)
	}
}

func TestEmit_ConcurrentLinesStayWhole(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASTRA_ARTIFACTS_DIR", dir)
	t.Setenv("ASTRA_OBSERVE_JSON", "1")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			telemetry.Emit("tick", map[string]any{"id": i, "pad": strings.Repeat("x", 512)})
		}(i)
	}
	wg.Wait()

	events := readEvents(t, dir)
	if len(events) != 25 {
		t.Fatalf("expected 25 events, got %d", len(events))
	}
	// seq is assigned under the write lock, so file order is seq order
	for i := 1; i < len(events); i++ {
		prev, _ := events[i-1]["seq"].(float64)
		cur, _ := events[i]["seq"].(float64)
		if cur != prev+1 {
			t.Fatalf("seq not contiguous at line %d: %v then %v", i, prev, cur)
		}
	}
}

func TestEmit_MapIsolation(t *testing.T) {
	t.Setenv("ASTRA_ARTIFACTS_DIR", t.TempDir())
	t.Setenv("ASTRA_OBSERVE_JSON", "1")

	fields := map[string]any{"key": "value"}
	telemetry.Emit("test", fields)

	if len(fields) != 1 || fields["key"] != "value" {
		t.Fatalf("caller map mutated: %#v", fields)
	}
}

func TestEmit_ReadOnlyDir_NoPanic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.Mkdir(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)
	t.Setenv("ASTRA_ARTIFACTS_DIR", dir)
	t.Setenv("ASTRA_OBSERVE_JSON", "1")

	// Errors go to stderr; Emit must return normally.
	telemetry.Emit("test", map[string]any{"foo": "bar"})
}

func TestPersistPrompt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASTRA_ARTIFACTS_DIR", dir)
	t.Setenv("ASTRA_PERSIST_PROMPTS", "1")

	telemetry.PersistPrompt("turn-abc", "User: hi")

	b, err := os.ReadFile(filepath.Join(dir, "prompts", "turn-abc.txt"))
	if err != nil {
		t.Fatalf("read prompt: %v", err)
	}
	if string(b) != "User: hi" {
		t.Fatalf("prompt mismatch: %q", b)
	}
}

func TestPersistPrompt_EmptyTurnIDSkipped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASTRA_ARTIFACTS_DIR", dir)
	t.Setenv("ASTRA_PERSIST_PROMPTS", "1")

	telemetry.PersistPrompt("", "User: hi")

	if _, err := os.Stat(filepath.Join(dir, "prompts")); !os.IsNotExist(err) {
		t.Fatalf("expected no prompts dir, got err=%v", err)
	}
}
