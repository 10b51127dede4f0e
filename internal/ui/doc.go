// Package ui serves the drawing page, a health probe and the status snapshot
// on an HTTP endpoint separate from the stream endpoint.
package ui
