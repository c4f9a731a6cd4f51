package cli

import (
	"context"
	"strconv"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *Config) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage:   "print-config",
		MaxArgs: 0,
		Short:   "Show resolved configuration",
		Long:    "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *Config) error {
	io.Println("effective_cwd=" + cfg.WorkDir)
	io.Println("chunk_size=" + strconv.Itoa(cfg.ChunkSize))
	io.Println("temp_ext=" + cfg.TempExt)
	io.Println("log_level=" + cfg.LogLevel)

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Explicit == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Explicit != "" {
			io.Println("explicit_config=" + cfg.Sources.Explicit)
		}
	}

	return nil
}
