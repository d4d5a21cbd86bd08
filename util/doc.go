// Package util holds small generic helpers for merging optional settings:
// pointer helpers for tri-state options, Coalesce for first-set-wins
// defaults and MaskSecret for logging credentials.
package util
