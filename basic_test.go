package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/danswartzendruber/liner"
)

func TestCLIFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want cli
	}{
		{"defaults", nil, cli{LogLevel: "warn"}},
		{"file", []string{"hello.bas"}, cli{File: "hello.bas", LogLevel: "warn"}},
		{"everything", []string{"prog", "--seed=7", "--stats", "--trace-dump", "--log-level=debug"},
			cli{File: "prog", Seed: 7, Stats: true, TraceDump: true, LogLevel: "debug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var c cli

			parser, err := kong.New(&c, kong.Vars{"version": VERSION})
			if err != nil {
				t.Fatal(err)
			}

			if _, err := parser.Parse(tt.args); err != nil {
				t.Fatalf("Parse(%v): %v", tt.args, err)
			}

			if c != tt.want {
				t.Errorf("Parse(%v) = %+v, want %+v", tt.args, c, tt.want)
			}
		})
	}
}

func TestCLIBadLogLevel(t *testing.T) {
	t.Parallel()

	var c cli

	parser, err := kong.New(&c, kong.Vars{"version": VERSION})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--log-level=loud"}); err == nil {
		t.Error("Parse accepted --log-level=loud")
	}
}

func TestLoggerLevel(t *testing.T) {
	t.Parallel()

	c := cli{LogLevel: "debug"}

	if !c.logger(io.Discard).Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug logger does not log debug messages")
	}

	c.LogLevel = "error"

	if c.logger(io.Discard).Enabled(context.Background(), slog.LevelWarn) {
		t.Error("error logger logs warnings")
	}
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
		code int
	}{
		{"runs", "20 PRINT \"B\"\n10 PRINT \"A\";\n\n30 END\n", "AB\n", 0},
		{"run error", "10 PRINT 1/0\n", "!DIVISION BY ZERO IN LINE 10\n", 1},
		{"load error", "10 PRINT 1\nPRINT 2\n", "!LINE NUMBERING ERROR IN RAW LINE 2\n", 1},
		{"stops", "10 PRINT 1;\n20 STOP\n30 PRINT 2\n", "  1!BREAK IN LINE 20\n", 0},
		{"ends mid line", "10 PRINT \"A\";\n", "A\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out strings.Builder

			c := cli{LogLevel: "warn"}
			prog := c.newProgram(&out, c.logger(io.Discard), nil)

			if code := c.runBatch(prog, strings.NewReader(tt.src), &out); code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunBatchStats(t *testing.T) {
	t.Parallel()

	var out strings.Builder

	c := cli{LogLevel: "warn", Stats: true}
	prog := c.newProgram(&out, c.logger(io.Discard), nil)

	if code := c.runBatch(prog, strings.NewReader("10 A=1:B=2\n"), &out); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if got := out.String(); !strings.Contains(got, "2 statements executed") {
		t.Errorf("stats output %q lacks statement count", got)
	}
}

func TestExecuteCommand(t *testing.T) {
	t.Parallel()

	var out strings.Builder

	c := cli{LogLevel: "warn"}
	prog := c.newProgram(&out, c.logger(io.Discard), nil)

	steps := []struct {
		line string
		want string
		exit bool
	}{
		{"20 PRINT X", "", false},
		{"10 x = 3", "", false},
		{"run", "  3\n", false},
		{"LIST", "10 x = 3\n20 PRINT X\n", false},
		{"10", "", false},
		{"RUN", "  0\n", false},
		{"10 PRINT \"A", "!EXPECTED CLOSING QUOTE IN LINE 10\n", false},
		{"NEW", "", false},
		{"LIST", "", false},
		{"FROB", "What?\n", false},
		{"stats", "toggling stats ON\n", false},
		{"trace", "toggling trace ON\n", false},
		{"TRACE", "toggling trace OFF\n", false},
		{"HELP RUN", "Execute the current program\n", false},
		{"   ", "", false},
		{"BYE", "", true},
	}

	for _, step := range steps {
		out.Reset()

		if exit := c.executeCommand(prog, step.line, &out); exit != step.exit {
			t.Errorf("executeCommand(%q) exit = %v, want %v", step.line, exit, step.exit)
		}

		if got := out.String(); got != step.want {
			t.Errorf("executeCommand(%q) output = %q, want %q", step.line, got, step.want)
		}
	}
}

func TestHelpList(t *testing.T) {
	t.Parallel()

	var out strings.Builder

	executeHelp(&out, nil)

	for _, cmd := range helpOrder {
		if !strings.Contains(out.String(), cmd+"\n") {
			t.Errorf("help listing lacks %q", cmd)
		}

		if _, ok := helpText[strings.ToUpper(cmd)]; !ok {
			t.Errorf("no help text for %q", cmd)
		}
	}
}

func TestLineReader(t *testing.T) {
	t.Parallel()

	next := lineReader(strings.NewReader("one\r\ntwo\n"))

	for _, want := range []string{"one", "two", ""} {
		if got := next(); got != want {
			t.Errorf("next() = %q, want %q", got, want)
		}
	}
}

func TestPromptResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		s       string
		err     error
		want    string
		wantEOF bool
	}{
		{"line", "10 PRINT 1", nil, "10 PRINT 1", false},
		{"ctrl-c", "partial", liner.ErrPromptAborted, "", false},
		{"eof", "", io.EOF, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, eof := promptResult(tt.s, tt.err)
			if got != tt.want || eof != tt.wantEOF {
				t.Errorf("promptResult(%q, %v) = %q, %v, want %q, %v",
					tt.s, tt.err, got, eof, tt.want, tt.wantEOF)
			}
		})
	}
}
