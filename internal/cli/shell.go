package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

const shellPrompt = "memdir> "

// ShellCmd returns the shell command.
func ShellCmd(env *Env) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage:   "shell",
		MaxArgs: 0,
		Short:   "Start an interactive session",
		Long: `Start an interactive session against a fresh store.

When stdin is a terminal the session offers line editing, tab completion and
history. Otherwise each line of stdin is executed as a command and the first
failing line ends the session.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			sess := NewSession(env.Store, env.Host, env.Config.WorkDir, o)

			if env.IsTerm {
				return runInteractive(ctx, sess, o, env.History)
			}

			return runLines(ctx, sess, scanLines(env.In))
		},
	}
}

// RunScriptCmd returns the run command.
func RunScriptCmd(env *Env) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("run", flag.ContinueOnError),
		Usage:   "run <script>",
		MinArgs: 1,
		MaxArgs: 1,
		Short:   "Execute session commands from a file",
		Long: `Execute session commands from a host file, one per line.

Blank lines and lines starting with '#' are skipped. The first failing line
stops the script and is reported with its line number.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			sess := NewSession(env.Store, env.Host, env.Config.WorkDir, o)

			data, err := env.Host.ReadFile(sess.hostPath(args[0]))
			if err != nil {
				return err
			}

			return runLines(ctx, sess, scanLines(strings.NewReader(string(data))))
		},
	}
}

func scanLines(r io.Reader) func() (string, bool) {
	if r == nil {
		return func() (string, bool) { return "", false }
	}

	sc := bufio.NewScanner(r)

	return func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}

		return sc.Text(), true
	}
}

// historyPath returns the history file for interactive sessions, or "" if no
// home directory is known.
func historyPath(env map[string]string) string {
	if state := env["XDG_STATE_HOME"]; state != "" {
		return filepath.Join(state, "memdir", "history")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".memdir_history")
	}

	return ""
}

func runInteractive(ctx context.Context, sess *Session, o *IO, history string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSession)

	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
	}

	defer saveHistory(line, history)

	o.Println("memdir - in-memory virtual file store")
	o.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		input, err := line.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println()

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		err = sess.Exec(input)
		if errors.Is(err, errExit) {
			return nil
		}

		if err != nil {
			o.ErrPrintln("error:", err)
		}
	}

	return ctx.Err()
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}

	_ = os.MkdirAll(filepath.Dir(path), 0o700)

	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		_ = f.Close()
	}
}
