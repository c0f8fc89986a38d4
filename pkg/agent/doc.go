// Package agent implements the Agent Loop (C6): Tailer + Control
// client + Uploader, composed into a single-tick work loop with a
// bounded in-memory retry buffer for uploads that fail after the
// Tailer has already advanced past their bytes.
package agent
