// Package pipeline runs one hook-clip job end to end.
//
// A job moves through idle, assets, caption, speech and compose before it
// ends in done or failed. Stages run strictly in sequence and only asset
// retrieval fans out internally. At most one job is active at a time: an
// in-process guard rejects overlapping Run calls and a file lock under the
// work directory rejects a second hookclip process.
//
// Every transition is logged and reported to a StatusSink. Sinks only
// receive events; nothing in the pipeline reads them back.
package pipeline
