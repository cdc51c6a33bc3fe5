// Package ffmpeg adapts the ffmpeg and ffprobe executables into the opaque
// encoding engine the pipeline talks to.
//
// An Engine opens one Session per media job. The session owns a Workspace,
// a private directory under the configured work root that stands in for the
// engine's virtual file area: named input buffers are staged there, ffmpeg
// runs with the workspace as its working directory, and the named output is
// read back. Closing the session removes the directory, so nothing survives
// the job and no two jobs share files.
//
// Session implements the narrow interfaces the stage packages consume:
// Render and Probe for the compositor, NormalizeAudio for speech synthesis.
package ffmpeg
