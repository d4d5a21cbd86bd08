// Package process runs external tools such as ffmpeg and whisper-cli.
//
// Run executes one command with process-group cancellation: on context
// cancellation the whole tree receives SIGTERM, then SIGKILL after the grace
// period. Runner binds a binary and default timeouts and logs each call.
package process
