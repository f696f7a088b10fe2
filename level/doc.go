// Package level provides the log level registry and the gate that decides
// whether a record at a given level passes a handler.
//
// Levels are named priorities. Lower numbers are more verbose: with the
// defaults from [Defaults], "debug" (5) is more verbose than "info" (15).
//
// A handler is configured with a [Spec], which is one of:
//
//   - [Named]: a threshold given by level name,
//   - [Numeric]: a threshold given by raw priority,
//   - [Only]: an explicit allow-set of level names.
//
// [Registry.Allows] compares a [Spec] with the level of a record:
//
//	reg := level.NewRegistry(level.Defaults()...)
//
//	ok, err := reg.Allows(level.Named("info"), level.ByName("warn"))
//	// ok == true
//
//	ok, err = reg.Allows(level.Only("warn", "error"), level.ByName("info"))
//	// ok == false
//
// New levels may be registered at any time with [Registry.Register]; the
// registry never shrinks.
package level
