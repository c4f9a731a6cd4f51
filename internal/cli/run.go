package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/memdir/pkg/fs"
	"github.com/calvinalkan/memdir/pkg/memdir"
)

// Env carries what a command needs beyond its own flags.
type Env struct {
	In      io.Reader
	Config  Config
	Store   *memdir.Store
	Host    fs.FS
	IsTerm  bool
	History string
}

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal received on it cancels the running command.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(out, errOut)

	globals := flag.NewFlagSet("memdir", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	chunkSize := globals.Int("chunk-size", 0, "Growth chunk in `bytes`")
	tempExt := globals.String("temp-ext", "", "Extension of temp file names")
	logLevel := globals.String("log-level", "", "Log `level` (debug, info, warn, error)")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		o.ErrPrintln("error:", err)
		printUsage(errOut, globals)

		return 1
	}

	rest := globals.Args()
	if *help || len(rest) == 0 {
		printUsage(out, globals)

		return 0
	}

	dir := *workDir
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			o.ErrPrintln("error: cannot get working directory:", err)

			return 1
		}
	}

	overrides := Config{ChunkSize: *chunkSize, TempExt: *tempExt, LogLevel: *logLevel}

	cfg, err := LoadConfig(dir, *configPath, overrides, env)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level()}))

	store, err := memdir.New(cfg.StoreOptions(logger))
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	defer func() { _ = store.Close() }()

	cmdEnv := &Env{
		In:      in,
		Config:  cfg,
		Store:   store,
		Host:    fs.NewReal(),
		IsTerm:  isTerminal(in),
		History: historyPath(env),
	}

	commands := []*Command{
		ShellCmd(cmdEnv),
		RunScriptCmd(cmdEnv),
		PrintConfigCmd(&cmdEnv.Config),
	}

	name := rest[0]
	for _, cmd := range commands {
		if cmd.Name() != name {
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if sigCh != nil {
			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()
		}

		return cmd.Run(ctx, o, rest[1:])
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(errOut, globals, commands...)

	return 1
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands ...*Command) {
	_, _ = fmt.Fprintln(w, "memdir - in-memory virtual file store")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage: memdir [options] <command> [args]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Options:")
	_, _ = fmt.Fprint(w, globals.FlagUsages())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Commands:")

	if len(commands) == 0 {
		commands = []*Command{ShellCmd(nil), RunScriptCmd(nil), PrintConfigCmd(nil)}
	}

	for _, cmd := range commands {
		_, _ = fmt.Fprintln(w, cmd.HelpLine())
	}
}

// scriptError prefixes err with the script position it came from.
type scriptError struct {
	line int
	err  error
}

func (e *scriptError) Error() string { return fmt.Sprintf("line %d: %v", e.line, e.err) }

func (e *scriptError) Unwrap() error { return e.err }

// runLines feeds each line returned by lines to sess. It stops at the first
// failing line or at "exit".
func runLines(ctx context.Context, sess *Session, lines func() (string, bool)) error {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, ok := lines()
		if !ok {
			return nil
		}

		err := sess.Exec(line)
		if errors.Is(err, errExit) {
			return nil
		}

		if err != nil {
			return &scriptError{line: n, err: err}
		}
	}
}
