package ffmpeg

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"hookclip/internal/media/ffprobe"
	"hookclip/internal/services"
)

type recordedRun struct {
	dir  string
	name string
	args []string
}

// writingRunner records the call and writes output into the workspace.
func writingRunner(runs *[]recordedRun, output []byte) commandRunner {
	return func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		*runs = append(*runs, recordedRun{dir: dir, name: name, args: args})
		target := filepath.Join(dir, args[len(args)-1])
		return nil, os.WriteFile(target, output, 0o600)
	}
}

func TestRenderStagesInputsAndReadsOutput(t *testing.T) {
	root := t.TempDir()
	var runs []recordedRun
	eng := NewEngine("/opt/ffmpeg", "", root, WithCommandRunner(writingRunner(&runs, []byte("encoded"))))

	session, err := eng.Open("job-1")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer session.Close()

	out, err := session.Render(context.Background(), Invocation{
		Inputs: []Input{{Name: "input.mp4", Data: []byte("video")}},
		Args:   []string{"-i", "input.mp4", "-c", "copy"},
		Output: "out.mp4",
	})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if string(out) != "encoded" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.name != "/opt/ffmpeg" || run.dir != filepath.Join(root, "job-1") {
		t.Fatalf("unexpected run %+v", run)
	}
	want := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", "input.mp4", "-c", "copy", "out.mp4"}
	if !slices.Equal(run.args, want) {
		t.Fatalf("args = %v, want %v", run.args, want)
	}
	staged, err := os.ReadFile(filepath.Join(run.dir, "input.mp4"))
	if err != nil || string(staged) != "video" {
		t.Fatalf("input not staged: %q, %v", staged, err)
	}
}

func TestRenderFailureCarriesStderrTail(t *testing.T) {
	runner := func(context.Context, string, string, ...string) ([]byte, error) {
		return []byte("[Parsed_drawtext_3] Cannot find a valid font\n"), &exec.ExitError{}
	}
	eng := NewEngine("", "", t.TempDir(), WithCommandRunner(runner))
	session, err := eng.Open("job-2")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer session.Close()

	_, err = session.Render(context.Background(), Invocation{Output: "out.mp4"})
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Cannot find a valid font") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}

func TestRenderMissingOutput(t *testing.T) {
	runner := func(context.Context, string, string, ...string) ([]byte, error) { return nil, nil }
	eng := NewEngine("", "", t.TempDir(), WithCommandRunner(runner))
	session, _ := eng.Open("job-3")
	defer session.Close()

	if _, err := session.Render(context.Background(), Invocation{Output: "out.mp4"}); !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestInputNamesMustBePlain(t *testing.T) {
	var runs []recordedRun
	eng := NewEngine("", "", t.TempDir(), WithCommandRunner(writingRunner(&runs, []byte("x"))))
	session, _ := eng.Open("job-4")
	defer session.Close()

	for _, name := range []string{"../escape.mp4", "dir/file.png", `a\b`, "", ".."} {
		_, err := session.Render(context.Background(), Invocation{
			Inputs: []Input{{Name: name, Data: []byte("x")}},
			Output: "out.mp4",
		})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("name %q: expected validation error, got %v", name, err)
		}
	}
	if _, err := session.Render(context.Background(), Invocation{Output: "../out.mp4"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for output, got %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("ffmpeg must not run for invalid names, ran %d times", len(runs))
	}
}

func TestNilDataRequiresEarlierStaging(t *testing.T) {
	var runs []recordedRun
	eng := NewEngine("", "", t.TempDir(),
		WithCommandRunner(writingRunner(&runs, []byte("x"))),
		WithProber(func(context.Context, string, string) (ffprobe.Result, error) { return ffprobe.Result{}, nil }),
	)
	session, _ := eng.Open("job-5")
	defer session.Close()

	inv := Invocation{Inputs: []Input{{Name: "input.mp4"}}, Output: "out.mp4"}
	if _, err := session.Render(context.Background(), inv); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := session.Probe(context.Background(), "input.mp4", []byte("video")); err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if _, err := session.Render(context.Background(), inv); err != nil {
		t.Fatalf("Render after probe returned error: %v", err)
	}
}

func TestProbeUsesStagedPath(t *testing.T) {
	var gotBinary, gotPath string
	prober := func(_ context.Context, binary, path string) (ffprobe.Result, error) {
		gotBinary, gotPath = binary, path
		return ffprobe.Parse([]byte(`{"streams":[{"codec_type":"video","width":1080,"height":1920}],"format":{"duration":"6.4"}}`))
	}
	root := t.TempDir()
	eng := NewEngine("", "/usr/bin/ffprobe", root, WithProber(prober))
	session, _ := eng.Open("job-6")
	defer session.Close()

	result, err := session.Probe(context.Background(), "input.mp4", []byte("video"))
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if gotBinary != "/usr/bin/ffprobe" || gotPath != filepath.Join(root, "job-6", "input.mp4") {
		t.Fatalf("unexpected probe call %s %s", gotBinary, gotPath)
	}
	if w, h, ok := result.Dimensions(); !ok || w != 1080 || h != 1920 {
		t.Fatalf("unexpected dimensions %dx%d", w, h)
	}
}

func TestProbeFailureIsEncodingError(t *testing.T) {
	prober := func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("invalid data found when processing input")
	}
	eng := NewEngine("", "", t.TempDir(), WithProber(prober))
	session, _ := eng.Open("job-7")
	defer session.Close()

	if _, err := session.Probe(context.Background(), "logo.png", []byte("x")); !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestNormalizeAudioConvertsToWAV(t *testing.T) {
	var runs []recordedRun
	eng := NewEngine("", "", t.TempDir(), WithCommandRunner(writingRunner(&runs, []byte("RIFF"))))
	session, _ := eng.Open("job-8")
	defer session.Close()

	wav, err := session.NormalizeAudio(context.Background(), "temp_tts.mp3", []byte("ID3"))
	if err != nil {
		t.Fatalf("NormalizeAudio returned error: %v", err)
	}
	if string(wav) != "RIFF" {
		t.Fatalf("unexpected wav %q", wav)
	}
	args := runs[0].args
	if args[len(args)-1] != "temp_tts.wav" || !slices.Contains(args, "temp_tts.mp3") {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestCloseRemovesWorkspace(t *testing.T) {
	root := t.TempDir()
	eng := NewEngine("", "", root)
	session, err := eng.Open("job-9")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := session.Workspace().Write("a.txt", []byte("x")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	dir := session.Workspace().Dir()
	if err := session.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected workspace removed, stat err=%v", err)
	}
	if _, err := session.Render(context.Background(), Invocation{Output: "x"}); err == nil {
		t.Fatal("expected error on closed session")
	}
}

func TestKeepWorkspaceLeavesDirectory(t *testing.T) {
	eng := NewEngine("", "", t.TempDir(), WithKeepWorkspace(true))
	session, _ := eng.Open("job-10")
	dir := session.Workspace().Dir()
	_ = session.Close()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected kept workspace, got %v", err)
	}
}

func TestOpenRejectsDuplicateAndInvalidJobs(t *testing.T) {
	eng := NewEngine("", "", t.TempDir())
	session, err := eng.Open("job-11")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer session.Close()
	if _, err := eng.Open("job-11"); err == nil {
		t.Fatal("expected error when the job directory already exists")
	}
	if _, err := eng.Open("../job"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewEngine("", "", "").Open("job"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
