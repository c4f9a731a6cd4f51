package cli

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/calvinalkan/memdir/pkg/fs"
	"github.com/calvinalkan/memdir/pkg/memdir"
)

// errExit is returned by [Session.Exec] for "exit" and "quit".
var errExit = errors.New("exit")

var errUsage = errors.New("usage")

// sessionCommand is one line-oriented command of a session.
type sessionCommand struct {
	usage   string
	short   string
	minArgs int
	exec    func(s *Session, args []string) error
}

// sessionCommands is filled in init to break the initialization cycle through
// cmdHelp.
var sessionCommands map[string]sessionCommand

// sessionOrder fixes the help and completion order.
var sessionOrder = []string{
	"write", "tmp", "cat", "ls", "stat", "rm", "mv", "cp", "sum",
	"import", "export", "help", "exit",
}

func init() {
	sessionCommands = map[string]sessionCommand{
		"write":  {usage: "write <name> <text...>", short: "Create a file holding text", minArgs: 1, exec: cmdWrite},
		"tmp":    {usage: "tmp <prefix> <suffix> <text...>", short: "Create a uniquely named temp file", minArgs: 2, exec: cmdTmp},
		"cat":    {usage: "cat <name> [offset length]", short: "Print a file or a slice of it", minArgs: 1, exec: cmdCat},
		"ls":     {usage: "ls", short: "List files with their lengths", exec: cmdLs},
		"stat":   {usage: "stat <name>", short: "Print the length of a file", minArgs: 1, exec: cmdStat},
		"rm":     {usage: "rm <name>", short: "Remove a file", minArgs: 1, exec: cmdRm},
		"mv":     {usage: "mv <src> <dst>", short: "Rename a file", minArgs: 2, exec: cmdMv},
		"cp":     {usage: "cp <src> <dst>", short: "Copy a file to a new name", minArgs: 2, exec: cmdCp},
		"sum":    {usage: "sum <name>", short: "Print the CRC-32 of a file", minArgs: 1, exec: cmdSum},
		"import": {usage: "import <host-path> [name]", short: "Copy a host file into the store", minArgs: 1, exec: cmdImport},
		"export": {usage: "export <name> <host-path>", short: "Write a file to the host atomically", minArgs: 2, exec: cmdExport},
		"help":   {usage: "help [command]", short: "Show this help or one command's", exec: cmdHelp},
		"exit":   {usage: "exit", short: "Leave the session", exec: func(*Session, []string) error { return errExit }},
	}
}

// Session executes line commands against one store.
type Session struct {
	store   *memdir.Store
	host    fs.FS
	workDir string
	io      *IO
}

// NewSession returns a session over store. Relative host paths resolve
// against workDir.
func NewSession(store *memdir.Store, host fs.FS, workDir string, o *IO) *Session {
	return &Session{store: store, host: host, workDir: workDir, io: o}
}

// Exec runs one command line. Blank lines and lines starting with '#' are
// ignored. It returns errExit when the line asks to leave the session.
func (s *Session) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])

	if name == "quit" || name == "q" {
		name = "exit"
	}

	cmd, ok := sessionCommands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", fields[0])
	}

	args := fields[1:]
	if len(args) < cmd.minArgs {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}

	return cmd.exec(s, args)
}

func (s *Session) hostPath(p string) string {
	if filepath.IsAbs(p) || s.workDir == "" {
		return p
	}

	return filepath.Join(s.workDir, p)
}

func (s *Session) report(verb string, out *memdir.Output) {
	s.io.Printf("%s %s %d bytes crc32=%08x\n", verb, out.Name(), out.Pos(), out.Checksum())
}

func (s *Session) readAll(name string) ([]byte, error) {
	in, err := s.store.Open(name)
	if err != nil {
		return nil, err
	}

	defer func() { _ = in.Close() }()

	data := make([]byte, in.Len())

	err = in.ReadBytes(data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func cmdWrite(s *Session, args []string) error {
	out, err := s.store.Create(args[0])
	if err != nil {
		return err
	}

	defer func() { _ = out.Close() }()

	_, err = out.Write([]byte(strings.Join(args[1:], " ")))
	if err != nil {
		return err
	}

	s.report("wrote", out)

	return nil
}

func cmdTmp(s *Session, args []string) error {
	_, out, err := s.store.CreateTemp(args[0], args[1])
	if err != nil {
		return err
	}

	defer func() { _ = out.Close() }()

	_, err = out.Write([]byte(strings.Join(args[2:], " ")))
	if err != nil {
		return err
	}

	s.report("wrote", out)

	return nil
}

func cmdCat(s *Session, args []string) error {
	in, err := s.store.Open(args[0])
	if err != nil {
		return err
	}

	defer func() { _ = in.Close() }()

	off, n := int64(0), in.Len()

	if len(args) > 1 {
		if len(args) != 3 {
			return fmt.Errorf("%w: %s", errUsage, sessionCommands["cat"].usage)
		}

		off, err = strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid offset %q", args[1])
		}

		n, err = strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", args[2])
		}
	}

	view, err := in.Slice(args[0], off, n)
	if err != nil {
		return err
	}

	data := make([]byte, view.Len())

	err = view.ReadBytes(data)
	if err != nil {
		return err
	}

	_, _ = s.io.Write(data)
	s.io.Println()

	return nil
}

func cmdLs(s *Session, _ []string) error {
	names, err := s.store.List()
	if err != nil {
		return err
	}

	for _, name := range names {
		n, err := s.store.FileLen(name)
		if errors.Is(err, memdir.ErrNotFound) {
			continue
		}

		if err != nil {
			return err
		}

		s.io.Printf("%-30s %d\n", name, n)
	}

	return nil
}

func cmdStat(s *Session, args []string) error {
	n, err := s.store.FileLen(args[0])
	if err != nil {
		return err
	}

	s.io.Printf("%s %d\n", args[0], n)

	return nil
}

func cmdRm(s *Session, args []string) error {
	return s.store.Remove(args[0])
}

func cmdMv(s *Session, args []string) error {
	return s.store.Rename(args[0], args[1])
}

func cmdCp(s *Session, args []string) error {
	in, err := s.store.Open(args[0])
	if err != nil {
		return err
	}

	defer func() { _ = in.Close() }()

	out, err := s.store.Create(args[1])
	if err != nil {
		return err
	}

	defer func() { _ = out.Close() }()

	err = out.CopyFrom(in, in.Len())
	if err != nil {
		return err
	}

	s.report("copied", out)

	return nil
}

func cmdSum(s *Session, args []string) error {
	data, err := s.readAll(args[0])
	if err != nil {
		return err
	}

	s.io.Printf("%s crc32=%08x\n", args[0], crc32.ChecksumIEEE(data))

	return nil
}

func cmdImport(s *Session, args []string) error {
	src := s.hostPath(args[0])

	data, err := s.host.ReadFile(src)
	if err != nil {
		return err
	}

	name := filepath.Base(args[0])
	if len(args) > 1 {
		name = args[1]
	}

	out, err := s.store.Create(name)
	if err != nil {
		return err
	}

	defer func() { _ = out.Close() }()

	_, err = out.Write(data)
	if err != nil {
		return err
	}

	s.report("imported", out)

	return nil
}

func cmdExport(s *Session, args []string) error {
	data, err := s.readAll(args[0])
	if err != nil {
		return err
	}

	dst := s.hostPath(args[1])

	err = s.host.WriteFileAtomic(dst, bytes.NewReader(data))
	if err != nil {
		return err
	}

	s.io.Printf("exported %s %d bytes to %s\n", args[0], len(data), args[1])

	return nil
}

func cmdHelp(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, ok := sessionCommands[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown command: %s (type 'help' for commands)", args[0])
		}

		printDetail(s.io, cmd.usage, "", cmd.short)

		return nil
	}

	s.io.Println("Commands:")

	for _, name := range sessionOrder {
		cmd := sessionCommands[name]
		s.io.Println(helpLine(cmd.usage, cmd.short, 32))
	}

	return nil
}

// completeSession returns the session command names starting with line.
func completeSession(line string) []string {
	var out []string

	lower := strings.ToLower(line)
	for _, name := range sessionOrder {
		if strings.HasPrefix(name, lower) {
			out = append(out, name)
		}
	}

	return out
}
