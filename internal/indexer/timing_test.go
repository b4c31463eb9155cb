package indexer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestTimingJSONLWritten(t *testing.T) {
	dir := t.TempDir()
	top := writeVerilog(t, dir, "top.v", topSrc)
	missing := filepath.Join(dir, "missing.v")
	timingPath := filepath.Join(dir, "timing.jsonl")

	idx := newTestIndexer()
	idx.Timing = true
	idx.TimingPath = timingPath

	if _, err := idx.IngestFiles([]string{top, missing}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	raw, err := os.ReadFile(timingPath)
	if err != nil {
		t.Fatalf("read timing file: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("expected 3 timing events, got %d", len(lines))
	}

	statuses := map[string]string{}
	var foundTotal bool
	for _, line := range lines {
		var ev timingEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			t.Fatalf("parse timing event: %v", err)
		}
		if ev.Kind == "file" && ev.Phase == "ingest" {
			statuses[ev.File] = ev.Status
		}
		if ev.Kind == "stage" && ev.Phase == "total" {
			foundTotal = true
			if ev.EndMS < ev.StartMS {
				t.Fatalf("total stage ends before it starts: %+v", ev)
			}
		}
	}
	if !foundTotal {
		t.Fatalf("expected total timing event")
	}
	if statuses[top] != "ok" || statuses[missing] != "missing" {
		t.Fatalf("unexpected per-file statuses: %v", statuses)
	}
}

func TestTimingPathResolution(t *testing.T) {
	idx := newTestIndexer()
	t.Setenv("VHIER_TIMING_JSONL", "")
	t.Setenv("VHIER_TIMING", "")
	if got := idx.resolveTimingPath(); got != "" {
		t.Fatalf("expected timing disabled, got %q", got)
	}

	t.Setenv("VHIER_TIMING", "yes")
	if got := idx.resolveTimingPath(); got != filepath.Join(".", "timing.jsonl") {
		t.Fatalf("expected timing.jsonl in output dir, got %q", got)
	}

	t.Setenv("VHIER_TIMING_JSONL", "/tmp/explicit.jsonl")
	if got := idx.resolveTimingPath(); got != "/tmp/explicit.jsonl" {
		t.Fatalf("expected env path, got %q", got)
	}
}
