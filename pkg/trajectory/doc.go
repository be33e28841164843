// Package trajectory accumulates the frames produced by a linkage and
// provides the sinks that hand them to storage and rendering: an in-memory
// Recorder, a fan-out Multi sink and a CSV writer.
package trajectory
