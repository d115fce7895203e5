package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dshills/keyact/internal/config"
	"github.com/dshills/keyact/internal/dispatcher"
	"github.com/dshills/keyact/internal/dispatcher/execctx"
	"github.com/dshills/keyact/internal/dispatcher/handlers/number"
	"github.com/dshills/keyact/internal/engine/buffer"
	"github.com/dshills/keyact/internal/logging"
	"github.com/dshills/keyact/internal/tracing"
)

// options holds the flags shared by the editing subcommands.
type options struct {
	configPath string
	line       int
	col        int
	count      int
	write      bool
	diff       bool
	trace      bool
	eol        string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "keyact",
		Short:         "Apply modal-editor actions to text",
		Long:          `keyact runs vim-style actions such as CTRL-A and CTRL-X against a file or stdin and prints the result.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (.toml, .yaml or .yml)")

	root.AddCommand(
		newActionCmd("increment", "Add count to the number at or after the cursor", number.ActionIncrement, opts),
		newActionCmd("decrement", "Subtract count from the number at or after the cursor", number.ActionDecrement, opts),
		newConfigCmd(opts),
	)
	return root
}

func newActionCmd(use, short, action string, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runAction(cmd.Context(), cmd, action, path, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.line, "line", "l", 1, "cursor line (1-based)")
	cmd.Flags().IntVar(&opts.col, "col", 1, "cursor byte column (1-based)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "count prefix (0 means none)")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "write the result back to file")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "print a patch instead of the result")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "export trace spans to stderr")
	cmd.Flags().StringVar(&opts.eol, "eol", "auto", "output line ending (auto, lf, crlf or cr)")
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "toml":
				data, err = config.EncodeTOML(cfg)
			case "yaml":
				data, err = config.EncodeYAML(cfg)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format (toml or yaml)")
	return cmd
}

func runAction(ctx context.Context, cmd *cobra.Command, action, path string, opts *options) error {
	if opts.write && path == "" {
		return fmt.Errorf("--write requires a file")
	}
	if opts.line < 1 || opts.col < 1 {
		return fmt.Errorf("--line and --col are 1-based")
	}

	eol, err := lineEnding(opts.eol)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.trace {
		cfg.Tracing.Enabled = true
	}

	stderr := cmd.ErrOrStderr()
	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}

	provider, err := tracing.NewProvider(cfg.Tracing, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	original, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	if eol == nil {
		eol = buffer.WithDetectedLineEnding(original)
	}
	buf := buffer.NewBufferFromString(original, eol)

	d := dispatcher.New(cfg.Dispatcher.Build(),
		dispatcher.WithLogger(logger),
		dispatcher.WithTracer(provider.Tracer()),
	)
	seg := cfg.Words.Build()
	d.Register(number.ActionIncrement, number.NewIncrement(number.WithSegmenter(seg)))
	d.Register(number.ActionDecrement, number.NewDecrement(number.WithSegmenter(seg)))

	st := execctx.New(buf, buffer.NewPosition(opts.line-1, opts.col-1))
	res := d.Execute(ctx, dispatcher.Action{Name: action, Count: opts.count}, st)
	if res.IsError() {
		return res.Error
	}

	fmt.Fprintf(stderr, "%d:%d %s\n", res.Cursor.Line+1, res.Cursor.Character+1, res.Status)

	result := buf.Text()
	switch {
	case opts.diff:
		_, err = io.WriteString(cmd.OutOrStdout(), patch(original, result))
		return err
	case opts.write:
		return writeFile(path, result)
	default:
		_, err = io.WriteString(cmd.OutOrStdout(), result)
		return err
	}
}

// lineEnding maps an --eol value to a buffer option. Auto returns nil so the
// caller can detect the ending from the input.
func lineEnding(name string) (buffer.Option, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return nil, nil
	case "lf":
		return buffer.WithLF(), nil
	case "crlf":
		return buffer.WithCRLF(), nil
	case "cr":
		return buffer.WithCR(), nil
	default:
		return nil, fmt.Errorf("unknown line ending %q", name)
	}
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeFile(path, text string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), info.Mode().Perm())
}

// patch renders a line-level patch between before and after.
func patch(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
