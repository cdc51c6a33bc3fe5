package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// EncoderRequirements lists the ffmpeg and ffprobe executables. When ffprobe
// is left at its default name and ffmpeg resolves to a directory that also
// holds ffprobe, that sibling is used so both tools come from one build.
func EncoderRequirements(ffmpegCommand, ffprobeCommand string) []Requirement {
	ffmpegCommand = strings.TrimSpace(ffmpegCommand)
	if ffmpegCommand == "" {
		ffmpegCommand = "ffmpeg"
	}
	ffprobeCommand = strings.TrimSpace(ffprobeCommand)
	if ffprobeCommand == "" || ffprobeCommand == "ffprobe" {
		if sibling, ok := ffprobeSibling(ffmpegCommand); ok {
			ffprobeCommand = sibling
		} else {
			ffprobeCommand = "ffprobe"
		}
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegCommand, Description: "Renders the composed clip and normalizes speech audio"},
		{Name: "FFprobe", Command: ffprobeCommand, Description: "Measures inputs for the measured layout"},
	}
}

func ffprobeSibling(ffmpegCommand string) (string, bool) {
	resolved, err := exec.LookPath(ffmpegCommand)
	if err != nil {
		return "", false
	}
	candidate := filepath.Join(filepath.Dir(resolved), executableName("ffprobe"))
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
