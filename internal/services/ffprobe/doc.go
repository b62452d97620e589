// Package ffprobe wraps the ffprobe binary as the pipeline's duration
// oracle. Probes run under a bounded timeout and report failures as
// external-tool errors; callers decide whether a failed probe matters.
package ffprobe
