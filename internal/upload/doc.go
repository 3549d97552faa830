// Package upload drives CSV file uploads to the analytics backend through a
// multi-phase pipeline: synchronous pre-flight validation, transmission with
// simulated progress reporting, a fixed server-side validation delay, and
// completion with a structured result the workflow orchestrator consumes.
//
// A Pipeline instance owns one upload session per upload type (tickets or
// usage). Sessions move idle → uploading → validating → complete, with
// uploading and validating able to divert to error; complete returns to idle
// automatically after a fixed delay, error only via explicit Reset. A
// generation counter guards every asynchronous transition so results arriving
// after a Reset are dropped instead of reapplied.
package upload
