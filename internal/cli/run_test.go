package cli_test

import (
	"testing"

	"github.com/calvinalkan/memdir/internal/cli"
)

func Test_Run_Prints_Usage_When_No_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Usage: memdir [options] <command> [args]")
	cli.AssertContains(t, stdout, "--chunk-size")
	cli.AssertContains(t, stdout, "run <script>")
}

func Test_Run_Prints_Usage_When_Help_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("-h")

	cli.AssertContains(t, stdout, "print-config")
}

func Test_Run_Prints_Command_Help_When_Help_Flag_After_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("run", "--help")

	cli.AssertContains(t, stdout, "Usage: memdir run <script>")
}

func Test_Run_Fails_When_Unknown_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("explode")

	cli.AssertContains(t, stderr, "error: unknown command: explode")
}

func Test_Run_Fails_When_Unknown_Global_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--bogus", "shell")

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
}

func Test_Run_Executes_Script_File(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteHostFile("setup.mds", "# build two files\nwrite a alpha\ncp a b\nls\n")

	stdout := c.MustRun("run", "setup.mds")

	cli.AssertContains(t, stdout, "copied b 5 bytes")
	cli.AssertContains(t, stdout, "a ")
}

func Test_Run_Script_Reports_Failing_Line(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteHostFile("bad.mds", "write a x\n\nrm missing\nwrite never x\n")

	stdout, stderr, code := c.Run("run", "bad.mds")
	if code != 1 {
		t.Fatalf("code=%d, want=1", code)
	}

	cli.AssertContains(t, stderr, "error: line 3: remove missing: memdir: not found")
	cli.AssertNotContains(t, stdout, "never")
}

func Test_Run_Script_Fails_When_Argument_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("run")

	cli.AssertContains(t, stderr, "usage: run <script>")
}

func Test_Run_Logs_Store_Events_When_Debug_Level(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.RunWithInput("write a x\nmv a b\nrm b\n", "--log-level", "debug", "shell")
	if code != 0 {
		t.Fatalf("code=%d, want=0\nstderr: %s", code, stderr)
	}

	cli.AssertContains(t, stderr, "msg=create name=a")
	cli.AssertContains(t, stderr, "msg=rename name=a dst=b")
	cli.AssertContains(t, stderr, "msg=remove name=b")
	cli.AssertContains(t, stderr, "msg=close")
}

func Test_Run_Is_Quiet_At_Default_Log_Level(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.RunWithInput("write a x\n", "shell")
	if code != 0 || stderr != "" {
		t.Fatalf("code=%d stderr=%q, want=0 and empty", code, stderr)
	}
}

func Test_Run_Fails_When_Command_Given_Extra_Arguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		wantErr string
	}{
		{args: []string{"run", "a.txt", "b.txt"}, wantErr: "error: usage: run <script>"},
		{args: []string{"print-config", "extra"}, wantErr: "error: usage: print-config"},
		{args: []string{"shell", "extra"}, wantErr: "error: usage: shell"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stderr := c.MustFail(tt.args...)

			cli.AssertContains(t, stderr, tt.wantErr)
		})
	}
}
