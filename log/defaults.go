package log

import (
	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/palette"
	"go.jacobcolvin.com/treelog/value"
)

// Plain layouts.
const (
	// MinimalLayout is the default plain layout.
	MinimalLayout = "{level:<{levelOffset}} {message}"
	// TimedMinimalLayout is [MinimalLayout] with a leading time.
	TimedMinimalLayout = "{time} {level:<{levelOffset}} {message}"
	// MaximumLayout adds time and logger name columns.
	MaximumLayout = "{time} | {level:<{levelOffset}} | {loggerName:<{loggerNameOffset}} -> {message}"
	// GroupedLayout adds time, group path and logger name columns.
	GroupedLayout = "{time} | {level:<{levelOffset}} | {groupName:<{groupNameOffset}} | " +
		"{loggerName:<{loggerNameOffset}} -> {message}"
	// MinimalTimeLayout is the default plain time layout.
	MinimalTimeLayout = "{hour:02d}:{minute:02d}:{second:02d}.{microsecond:06d}"
)

// Colored layouts.
const (
	// ColoredMinimalLayout is the default colored layout.
	ColoredMinimalLayout = "{levelColor}{level:<{levelOffset}}{reset} {message}"
	// ColoredTimedMinimalLayout is [ColoredMinimalLayout] with a leading time.
	ColoredTimedMinimalLayout = "{time} {levelColor}{level:<{levelOffset}}{reset} {message}"
	// ColoredMaximumLayout adds time and logger name columns.
	ColoredMaximumLayout = "{time} | {levelColor}{level:<{levelOffset}}{reset} | " +
		"{loggerColor}{loggerName:<{loggerNameOffset}}{reset} -> {message}"
	// ColoredGroupedLayout adds time, group path and logger name columns.
	ColoredGroupedLayout = "{time} | {levelColor}{level:<{levelOffset}}{reset} | " +
		"{groupColor}{groupName:<{groupNameOffset}}{reset} | " +
		"{loggerColor}{loggerName:<{loggerNameOffset}}{reset} -> {message}"
	// ColoredMinimalTimeLayout is the default colored time layout.
	ColoredMinimalTimeLayout = "{fore.cyan}{hour:02d}{fore.reset}:{fore.cyan}{minute:02d}{fore.reset}:" +
		"{fore.cyan}{second:02d}{fore.reset}.{fore.lightmagenta}{microsecond:06d}{fore.reset}"
)

// ColorDict holds the colors used by a [ColoredFormatter]: value colors by
// kind and level colors by level name.
type ColorDict struct {
	Levels map[string]string
	Types  value.Palette
}

// LevelColor returns the color of the level called name, or "".
func (d *ColorDict) LevelColor(name string) string {
	return d.Levels[name]
}

// DefaultColorDict returns a fresh copy of the default colors.
func DefaultColorDict() *ColorDict {
	fore := palette.Fore
	bold := palette.Style["bold"]

	return &ColorDict{
		Types: value.Palette{
			Types: map[value.Kind]string{
				value.KindInt:    fore["lightmagenta"],
				value.KindFloat:  fore["lightmagenta"] + bold,
				value.KindBool:   fore["yellow"],
				value.KindString: fore["lightgreen"],
				value.KindBytes:  fore["lightred"] + bold,
				value.KindList:   fore["lightyellow"],
				value.KindTuple:  fore["lightyellow"] + bold,
				value.KindMap:    fore["cyan"],
			},
			Exception: fore["lightred"],
			All:       fore["lightcyan"] + bold,
		},
		Levels: map[string]string{
			level.Debug:     fore["lightwhite"],
			level.Exception: fore["lightyellow"],
			level.Info:      fore["lightcyan"],
			level.Warn:      fore["yellow"],
			level.Error:     fore["lightred"],
			level.Critical:  fore["red"] + bold,
		},
	}
}
