package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"hookclip/internal/pipeline"
	"hookclip/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Speech", statusError, "timed out", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Speech:", "[ERROR] timed out")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Caption", statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestEventLine(t *testing.T) {
	cases := []struct {
		event pipeline.Event
		want  string
	}{
		{pipeline.Event{Stage: pipeline.StageAssets, Kind: pipeline.EventStarted}, "[INFO] started"},
		{pipeline.Event{Stage: pipeline.StageCaption, Kind: pipeline.EventCompleted, Message: "1.2s"}, "[OK] done in 1.2s"},
		{pipeline.Event{Stage: pipeline.StageSpeech, Kind: pipeline.EventProgress, Message: "polling 3/10"}, "[WARN] polling 3/10"},
		{pipeline.Event{Stage: pipeline.StageCompose, Kind: pipeline.EventFailed, Message: "boom", Err: errors.New("boom")}, "[ERROR] boom"},
		{pipeline.Event{Stage: pipeline.StageDone, Kind: pipeline.EventCompleted, Message: "clip ready"}, "[OK] clip ready"},
	}
	for _, tc := range cases {
		got := eventLine(tc.event, false)
		if !strings.HasSuffix(got, tc.want) {
			t.Fatalf("eventLine(%+v) = %q, want suffix %q", tc.event, got, tc.want)
		}
	}
	if !strings.Contains(eventLine(pipeline.Event{Stage: pipeline.StageDone, Kind: pipeline.EventCompleted}, false), "Job:") {
		t.Fatal("expected done events labelled Job")
	}
	if !strings.Contains(eventLine(pipeline.Event{Stage: pipeline.StageFailed, Kind: pipeline.EventFailed, Message: "boom"}, false), "Job:") {
		t.Fatal("expected failed events labelled Job")
	}
}

func TestStageLabel(t *testing.T) {
	cases := map[pipeline.Stage]string{
		"":                    "Job",
		pipeline.StageDone:    "Job",
		pipeline.StageFailed:  "Job",
		pipeline.StageCaption: "Caption",
		pipeline.StageCompose: "Compose",
		pipeline.Stage("mux"): "Mux",
	}
	for stage, want := range cases {
		if got := stageLabel(stage); got != want {
			t.Fatalf("stageLabel(%q) = %q, want %q", stage, got, want)
		}
	}
}

func TestLineSinkWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := newLineSink(&buf)
	sink.Report(pipeline.Event{Stage: pipeline.StageAssets, Kind: pipeline.EventStarted})
	sink.Report(pipeline.Event{Stage: pipeline.StageAssets, Kind: pipeline.EventCompleted})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("expected no colour for non-terminal writer")
	}
}

func TestPreflightLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "Gemini API key", Passed: true, Detail: "configured"},
		{Name: "FFmpeg", Detail: `binary "ffmpeg" not found`},
	}
	lines := preflightLines(results, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "[ERROR]") || !strings.Contains(lines[2], "1 of 2 checks failed") {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"abc":        "****",
		"abcdefgh":   "ab****gh",
		"  abcdef  ": "ab**ef",
	}
	for in, want := range cases {
		if got := maskSecret(in); got != want {
			t.Fatalf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
