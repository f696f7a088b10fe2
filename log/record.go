package log

import (
	"maps"
	"time"

	"go.jacobcolvin.com/treelog/level"
)

// Fields supplies named template arguments when passed among the arguments
// of a log call:
//
//	l.Info("user {name} logged in", log.Fields{"name": "ada"})
type Fields map[string]any

// attachment carries an error to be rendered after the message line.
type attachment struct {
	err error
}

// Attach marks err to be rendered in full after the message line by
// handlers that log exceptions. Pass it among the arguments of a log call:
//
//	l.Error("request failed", log.Attach(err))
func Attach(err error) any {
	return attachment{err: err}
}

// Record is one log event as seen by handlers and formatters.
type Record struct {
	Time        time.Time
	Err         error
	Fields      map[string]any
	Ref         level.Ref
	Message     string
	Level       string
	LoggerName  string
	LoggerColor string
	GroupName   string
	GroupColor  string
	Args        []any
}

// splitArgs separates positional arguments from [Fields] and attachments.
func splitArgs(args []any) ([]any, map[string]any, error) {
	var (
		positional []any
		fields     map[string]any
		err        error
	)

	for _, a := range args {
		switch x := a.(type) {
		case Fields:
			if fields == nil {
				fields = make(map[string]any, len(x))
			}

			maps.Copy(fields, x)

		case attachment:
			err = x.err

		default:
			positional = append(positional, a)
		}
	}

	return positional, fields, err
}
