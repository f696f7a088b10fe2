package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/sink"
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level  string
	Format string
	Layout string
	File   string
	Config string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Level:  level.Info,
		Format: string(FormatAuto),
		Layout: string(PresetMinimal),
		Flags:  f,
	}
}

// Config holds CLI flag values for log configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewHandler] to create a [Handler]
// for logging, or [Config.LoadTree] when a configuration file is given.
type Config struct {
	Level  string
	Format string
	Layout string
	File   string
	Config string
	Flags  Flags
}

// NewConfig returns a new [Config] with default values.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Level:  "log-level",
		Format: "log-format",
		Layout: "log-layout",
		File:   "log-file",
		Config: "log-config",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, c.Level,
		fmt.Sprintf("log level: a priority, a name (one of: %s), or a comma-separated allow-list",
			strings.Join(GetAllLevelStrings(), ", ")))
	flags.StringVar(&c.Format, c.Flags.Format, c.Format,
		fmt.Sprintf("log format, one of: %s", strings.Join(GetAllFormatStrings(), ", ")))
	flags.StringVar(&c.Layout, c.Flags.Layout, c.Layout,
		fmt.Sprintf("log layout preset, one of: %s", strings.Join(GetAllPresetStrings(), ", ")))
	flags.StringVar(&c.File, c.Flags.File, c.File,
		"write logs to this file instead of stderr")
	flags.StringVar(&c.Config, c.Flags.Config, c.Config,
		"logging configuration file (YAML)")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	fixed := map[string][]string{
		c.Flags.Level:  GetAllLevelStrings(),
		c.Flags.Format: GetAllFormatStrings(),
		c.Flags.Layout: GetAllPresetStrings(),
	}

	for _, name := range []string{c.Flags.Level, c.Flags.Format, c.Flags.Layout} {
		err := cmd.RegisterFlagCompletionFunc(name,
			cobra.FixedCompletions(fixed[name], cobra.ShellCompDirectiveNoFileComp))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	err := cmd.RegisterFlagCompletionFunc(c.Flags.Config,
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Config, err)
	}

	return nil
}

// NewHandler creates a [Handler] in ctx using the level, format and layout
// stored in c. Output goes to the file named by c.File, or to w. The caller
// owns the returned handler and should [Handler.Close] it.
func (c *Config) NewHandler(ctx *Context, w io.Writer) (*Handler, error) {
	if ctx == nil {
		ctx = Default()
	}

	spec, err := level.ParseSpec(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	err = CheckSpec(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(c.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	preset, err := ParsePreset(c.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var (
		out sink.Sink
		dst any = w
	)

	if c.File != "" {
		fw, err := sink.Create(c.File)
		if err != nil {
			return nil, err
		}

		out, dst = fw, fw
	} else {
		out = sink.NewWriter(w)
	}

	f, err := NewFormatter(ctx, format, preset, dst)
	if err != nil {
		return nil, err
	}

	return NewHandler(out, &HandlerOptions{
		Formatter: f,
		Context:   ctx,
		Level:     spec,
	}), nil
}

// LoadTree builds the logger tree described by the file named by c.Config.
func (c *Config) LoadTree(ctx *Context) (*Tree, error) {
	if c.Config == "" {
		return nil, fmt.Errorf("%w: no configuration file", ErrInvalidArgument)
	}

	fc, err := LoadFile(c.Config)
	if err != nil {
		return nil, err
	}

	return fc.Build(ctx)
}
