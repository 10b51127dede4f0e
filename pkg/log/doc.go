// Package log exposes the structured logging interface used by drawstream
// so embedding applications can plug in their own logger or reuse the
// zerolog-backed one.
//
// Use the zerolog adapter:
//
//	logger := log.NewZerolog(zerolog.New(os.Stderr))
//
// Or discard everything:
//
//	logger := log.NewNoop()
//
// Any type with Debug, Info, Warn and Error methods taking a message and
// ...log.Field satisfies Logger.
package log
