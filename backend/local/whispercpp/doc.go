// Package whispercpp provides a local.Engine backed by the whisper.cpp
// command line tool.
//
// Each Full call writes the samples to a temporary 16-bit WAV file, runs
// the tool with timestamps disabled and reads one segment per stdout line.
// The tool's exit code is reported as the inference result code.
package whispercpp
