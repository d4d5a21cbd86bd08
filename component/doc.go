// Package component defines the lifecycle contract shared by the speech
// service and its backends, and a Registry that starts components in order
// and stops them in reverse.
package component
