// Package log provides named, colorized loggers organized into a tree of
// groups.
//
// A [Logger] emits records through a list of [Handler]s. Each handler gates
// records by level (see [go.jacobcolvin.com/treelog/level]), renders them
// with a [Formatter] and writes the line to a sink (see
// [go.jacobcolvin.com/treelog/sink]).
//
// A [Group] supplies handlers, color and enabled state to the loggers and
// subgroups created under it. The handler list is shared by reference:
// adding a handler to a group's [Handlers] makes it visible to every logger
// and subgroup that inherited the list. Enabled state and color are copied at
// creation time; [Group.Enable] and [Group.Disable] cascade explicitly down
// the tree.
//
// Every logger, group and formatter belongs to a [Context], which owns the
// level registry. Whenever a level, logger or group is added, the context
// recomputes the column widths used to align level names, logger names and
// group paths and pushes them into every registered formatter.
//
// Typical usage:
//
//	ctx := log.NewContext()
//
//	f, err := log.NewColoredFormatter(&log.ColoredOptions{
//	    FormatterOptions: log.FormatterOptions{
//	        Context: ctx,
//	        Layout:  log.ColoredMaximumLayout,
//	    },
//	})
//	h := log.NewHandler(sink.Stderr(), &log.HandlerOptions{
//	    Level:     level.Named("debug"),
//	    Formatter: f,
//	})
//
//	core, err := log.NewGroup("core", log.WithContext(ctx), log.WithHandlers(h))
//	net, err := core.Logger("net")
//
//	net.Info("listening on {}", ":8080")
//	net.Warn("retrying {attempt} of {max}", log.Fields{"attempt": 2, "max": 5})
//
// Configuration can also come from CLI flags ([Config]) or a YAML document
// ([FileConfig]). [NewSlogHandler] routes [log/slog] records into a Logger.
package log
