package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/memdir/internal/cli"
)

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "chunk_size=1024")
	cli.AssertContains(t, stdout, "temp_ext=tmp")
	cli.AssertContains(t, stdout, "log_level=warn")
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_Explicit_Config_With_Comments_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteHostFile("custom.json", `{
		// chunk tuned for tiny files
		"chunk_size": 64,
		"temp_ext": "scratch",
	}`)

	stdout := c.MustRun("-c", "custom.json", "print-config")

	cli.AssertContains(t, stdout, "chunk_size=64")
	cli.AssertContains(t, stdout, "temp_ext=scratch")
	cli.AssertContains(t, stdout, "explicit_config="+filepath.Join(c.Dir, "custom.json"))
}

func Test_Print_Config_Global_Config_From_XDG_When_Present(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["XDG_CONFIG_HOME"] = filepath.Join(c.Dir, "xdg")
	c.WriteHostFile("xdg/memdir/config.json", `{"log_level": "debug"}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "log_level=debug")
	cli.AssertContains(t, stdout, "global_config="+filepath.Join(c.Dir, "xdg", "memdir", "config.json"))
}

func Test_Print_Config_Precedence_When_All_Sources_Set(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["HOME"] = filepath.Join(c.Dir, "home")
	c.WriteHostFile("home/.config/memdir/config.json", `{"chunk_size": 16, "temp_ext": "g", "log_level": "info"}`)
	c.WriteHostFile("explicit.json", `{"chunk_size": 32, "temp_ext": "e"}`)

	stdout := c.MustRun("--config=explicit.json", "--chunk-size", "48", "print-config")

	cli.AssertContains(t, stdout, "chunk_size=48")
	cli.AssertContains(t, stdout, "temp_ext=e")
	cli.AssertContains(t, stdout, "log_level=info")
}

func Test_Config_Errors_When_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		args    []string
		wantErr string
	}{
		{name: "UnknownKey", content: `{"ticket_dir": "x"}`, wantErr: "unknown field"},
		{name: "NegativeChunk", content: `{"chunk_size": -1}`, wantErr: "chunk_size must be positive"},
		{name: "BadJSONC", content: `{"chunk_size": }`, wantErr: "invalid JSONC"},
		{name: "BadTempExt", content: `{"temp_ext": "a.b"}`, wantErr: "temp_ext must not contain"},
		{name: "BadLogLevel", content: `{"log_level": "loud"}`, wantErr: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.WriteHostFile("bad.json", tt.content)

			stderr := c.MustFail("-c", "bad.json", "print-config")
			cli.AssertContains(t, stderr, tt.wantErr)
		})
	}
}

func Test_Config_Missing_Explicit_File_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("-c", "nope.json", "print-config")

	cli.AssertContains(t, stderr, "config file not found")
}

func Test_Config_Missing_Global_File_Is_Ignored(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["XDG_CONFIG_HOME"] = filepath.Join(c.Dir, "empty")

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "(defaults only)")
}
