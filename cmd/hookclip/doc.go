// Package main hosts the hookclip CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger, and hands work to the internal packages: render runs
// the pipeline for one video and check prints readiness. logs reads back the
// JSON log file, and config scaffolds or inspects the configuration file.
package main
