package pipeline

import (
	"fmt"
	"time"

	"hookclip/internal/compose"
)

// Stage is the lifecycle position of a job.
type Stage string

const (
	StageIdle    Stage = "idle"
	StageAssets  Stage = "assets"
	StageCaption Stage = "caption"
	StageSpeech  Stage = "speech"
	StageCompose Stage = "compose"
	StageDone    Stage = "done"
	StageFailed  Stage = "failed"
)

// Terminal reports whether the stage ends a job.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Source is the user-supplied input video.
type Source struct {
	Path     string
	MimeType string
	Data     []byte
}

// Job is the state of a single run.
type Job struct {
	ID         string
	Source     Source
	Stage      Stage
	Caption    string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Result is a finished clip.
type Result struct {
	JobID        string
	Filename     string
	Data         []byte
	Caption      string
	AudioSeconds float64
	TTSAttempts  int
	Layout       compose.Layout
	Spec         compose.Spec
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Elapsed returns the wall time of the job.
func (r *Result) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// outputFilename names the clip after the completion time in unix millis.
func outputFilename(finished time.Time) string {
	return fmt.Sprintf("final_video_%d.mp4", finished.UnixMilli())
}
