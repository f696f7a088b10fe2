// Command treelog demonstrates and validates treelog logging setups.
//
// # Usage
//
//	treelog demo [--log-level LEVEL] [--log-format FORMAT] [--log-layout PRESET] [--log-config FILE]
//	treelog schema
//	treelog validate <file.yaml> ...
//	treelog palette
//
// The demo command logs a sample of records through a small logger tree. With
// --log-config the tree is built from a configuration file instead; validate
// checks such files against the schema printed by the schema command.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/treelog/log"
	"go.jacobcolvin.com/treelog/palette"
	"go.jacobcolvin.com/treelog/value"
	"go.jacobcolvin.com/treelog/version"
)

// ErrValidation indicates that at least one configuration file is invalid.
var ErrValidation = errors.New("validation failed")

func main() {
	cmd := newRootCmd(os.Stdout)

	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "treelog",
		Short:         "Demonstrate and validate treelog logging setups",
		Version:       version.Get().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetOut(w)
	root.AddCommand(newDemoCmd(w), newSchemaCmd(w), newValidateCmd(w), newPaletteCmd(w))

	return root
}

func newDemoCmd(w io.Writer) *cobra.Command {
	cfg := log.NewConfig()

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Log sample records through a logger tree",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDemo(cfg, w)
		},
	}

	cfg.RegisterFlags(cmd.Flags())

	completionErr := cfg.RegisterCompletions(cmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	return cmd
}

func runDemo(cfg *log.Config, w io.Writer) error {
	ctx := log.NewContext()

	var loggers []*log.Logger

	if cfg.Config != "" {
		tree, err := cfg.LoadTree(ctx)
		if err != nil {
			return err
		}

		defer tree.Close() //nolint:errcheck // Best-effort on exit.

		for _, name := range slices.Sorted(maps.Keys(tree.Loggers)) {
			loggers = append(loggers, tree.Loggers[name])
		}
	} else {
		h, err := cfg.NewHandler(ctx, w)
		if err != nil {
			return err
		}

		defer h.Close() //nolint:errcheck // Best-effort on exit.

		loggers, err = demoTree(ctx, h)
		if err != nil {
			return err
		}
	}

	var errs []error

	for _, l := range loggers {
		errs = append(errs, emit(l))
	}

	return errors.Join(errs...)
}

func demoTree(ctx *log.Context, h *log.Handler) ([]*log.Logger, error) {
	core, err := log.NewGroup("core", log.WithContext(ctx), log.WithHandlers(h),
		log.WithColor(palette.Fore["cyan"]))
	if err != nil {
		return nil, err
	}

	net, err := core.Subgroup("net", log.WithColor(palette.Fore["lightblue"]))
	if err != nil {
		return nil, err
	}

	app, err := core.Logger("app")
	if err != nil {
		return nil, err
	}

	dial, err := net.Logger("dial", log.WithColor(palette.Fore["lightmagenta"]))
	if err != nil {
		return nil, err
	}

	return []*log.Logger{app, dial}, nil
}

func emit(l *log.Logger) error {
	cause := fmt.Errorf("dial tcp 10.0.0.7:443: %w", errors.New("connection refused"))

	err := errors.Join(
		l.Debug("resolving {}", "example.com"),
		l.Info("listening on {addr}", log.Fields{"addr": ":8080"}),
		l.Warn("retry {} of {}, backoff {}s", 2, 5, value.Fmt(".1f", 1.5)),
		l.Error("peers {} unreachable", []string{"a", "b"}),
		l.Critical("state {}", map[string]any{"healthy": false, "replicas": 3}),
		l.Exception("request failed", log.Attach(cause)),
	)

	slog.New(log.NewSlogHandler(l)).Info("bridged from slog", "component", "demo")

	return err
}

func newSchemaCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of configuration files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(log.ConfigSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}

			_, err = fmt.Fprintf(w, "%s\n", out)

			return err
		},
	}
}

func newValidateCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yaml> ...",
		Short: "Validate configuration files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(w, args)
		},
	}
}

func runValidate(w io.Writer, paths []string) error {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)

	failed := 0

	for _, path := range paths {
		fc, err := log.LoadFile(path)
		if err == nil {
			// Catches dangling references and bad colors without opening sinks.
			err = fc.Check()
		}

		if err != nil {
			failed++

			bad.Fprint(w, "FAIL") //nolint:errcheck // Terminal output.
			fmt.Fprintf(w, " %s: %v\n", path, err)

			continue
		}

		ok.Fprint(w, "ok") //nolint:errcheck // Terminal output.
		fmt.Fprintf(w, "   %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrValidation, failed, len(paths))
	}

	return nil
}

func newPaletteCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Show the color names accepted in configuration files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			heading := color.New(color.Bold, color.Underline)

			for _, t := range []struct {
				name  string
				table palette.Table
			}{
				{"fore", palette.Fore},
				{"bg", palette.Back},
				{"style", palette.Style},
			} {
				heading.Fprintln(w, t.name) //nolint:errcheck // Terminal output.

				names := t.table.Names()
				cells := make([]string, len(names))

				for i, n := range names {
					cells[i] = t.table.Code(n) + t.name + "." + n + palette.Reset
				}

				fmt.Fprintln(w, "  "+strings.Join(cells, " "))
			}

			return nil
		},
	}
}
