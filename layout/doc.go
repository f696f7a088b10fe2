// Package layout implements the keyed-substitution templates used by
// formatters to build log lines.
//
// A template is text with replacement fields in braces. Literal braces are
// written doubled ("{{" and "}}"). A field names its value and optionally
// converts and formats it:
//
//	{name}            keyword value looked up in [Vars]
//	{0}, {1}          positional arguments
//	{}                next positional argument
//	{fore.cyan}       attribute of a value implementing [Vars]
//	{value!r}         Go-syntax representation (%#v)
//	{level:<{width}}  format spec, which may itself contain fields
//
// The format spec follows the mini-language
//
//	[[fill]align][sign][#][0][width][grouping][.precision][type]
//
// where align is one of "<", ">", "^", "=", sign is one of "+", "-", " ",
// grouping is "," or "_" and type is one of "s", "d", "b", "o", "x", "X",
// "e", "E", "f", "F", "g", "G", "%".
//
// Templates are parsed once with [Parse] and executed many times:
//
//	tmpl, err := layout.Parse("{time} {level:<{levelOffset}} {message}")
//	line, err := tmpl.Execute(nil, layout.Map{
//	    "time":        "12:00:00",
//	    "level":       "info",
//	    "levelOffset": 9,
//	    "message":     "ready",
//	})
//
// Missing keys and out-of-range positional fields fail with [ErrFormatKey].
package layout
