package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"unicode"

	"github.com/alecthomas/kong"
	"github.com/danswartzendruber/liner"
	"golang.org/x/term"
)

//
// Command line.  With a program file, or with standard input not a
// terminal, we load the program, run it once and exit.  Otherwise we
// are interactive
//

type cli struct {
	File      string           `arg:"" optional:"" help:"BASIC program to run."`
	Seed      uint32           `default:"0" help:"Initial RND seed."`
	Stats     bool             `help:"Print execution statistics after each run."`
	TraceDump bool             `help:"Dump each line as it is tokenized."`
	LogLevel  string           `default:"warn" enum:"debug,info,warn,error" help:"Set log level."`
	Version   kong.VersionFlag `help:"Print version information and quit."`
}

func main() {

	var c cli

	kong.Parse(&c,
		kong.Name("basic"),
		kong.Description("Line-numbered BASIC interpreter."),
		kong.UsageOnError(),
		kong.Vars{"version": versionString()},
	)

	os.Exit(c.run(os.Stdin, os.Stdout, os.Stderr))
}

func (c *cli) run(stdin *os.File, stdout, stderr io.Writer) int {

	logger := c.logger(stderr)

	switch {
	case c.File != "":
		fname, ok := validateProgramFilename(c.File)
		if !ok {
			fmt.Fprintf(stderr, "Invalid filename %q!\n", c.File)
			return 2
		}

		f, err := os.Open(fname)
		if err != nil {
			fmt.Fprintf(stderr, "Cannot open %s (%v)\n", fname, err)
			return 2
		}
		defer f.Close()

		prog := c.newProgram(stdout, logger, lineReader(stdin))

		return c.runBatch(prog, f, stdout)

	case !term.IsTerminal(int(stdin.Fd())):
		prog := c.newProgram(stdout, logger, nil)

		return c.runBatch(prog, stdin, stdout)
	}

	return c.repl(stdout, logger)
}

func (c *cli) logger(w io.Writer) *slog.Logger {

	var level slog.Level

	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c *cli) newProgram(stdout io.Writer, logger *slog.Logger, input func() string) *Program {

	return NewProgram(
		WithOutput(stdout),
		WithInput(input),
		WithSeed(c.Seed),
		WithLogger(logger),
		WithTraceDump(c.TraceDump),
	)
}

//
// Load a whole program, then run it.  Loading stops at the first bad
// line, which is reported the same way a run time error is
//

func (c *cli) runBatch(prog *Program, r io.Reader, stdout io.Writer) int {

	if err := loadProgram(prog, r); err != nil {
		prog.Report(err)
		return 1
	}

	if err := c.runProgram(prog, stdout); err != nil {
		return 1
	}

	return 0
}

func loadProgram(prog *Program, r io.Reader) error {

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if err := prog.AddLine(scanner.Text()); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (c *cli) runProgram(prog *Program, stdout io.Writer) error {

	clk := startClock()

	err := prog.Run()

	if err != nil {
		prog.Report(err)
	} else {
		prog.EndLine()
	}

	if c.Stats {
		printStatistics(stdout, prog, clk)
	}

	return err
}

func lineReader(r io.Reader) func() string {

	br := bufio.NewReader(r)

	return func() string {
		s, _ := br.ReadString('\n')
		return strings.TrimRight(s, "\r\n")
	}
}

//
// Interactive mode.  Numbered lines go into the program, anything
// else is a command
//

func (c *cli) repl(stdout io.Writer, logger *slog.Logger) int {

	l := setupLiners()

	//
	// We need to close the Liner instances in reverse order, to make
	// sure we end up back in normal (cooked) terminal mode
	//

	defer l.cleanup()

	prog := c.newProgram(stdout, logger, func() string {
		s, _ := readLine(l.input, "? ", false)
		return s
	})

	printVersionInfo(stdout)

	for {
		line, eof := readLine(l.parser, myPrompt, true)
		if eof {
			return 0
		}

		if exiting := c.executeCommand(prog, line, stdout); exiting {
			return 0
		}
	}
}

func (c *cli) executeCommand(prog *Program, line string, w io.Writer) bool {

	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if unicode.IsDigit(rune(line[0])) {
		prog.Report(prog.AddLine(line))
		return false
	}

	fields := strings.Fields(strings.ToUpper(line))

	switch fields[0] {
	default:
		fmt.Fprintln(w, "What?")

	case "BYE", "EXIT":
		return true

	case "HELP":
		executeHelp(w, fields[1:])

	case "LIST":
		if err := prog.List(w); err != nil {
			prog.log.Error("list failed", slog.Any("error", err))
		}

	case "NEW":
		prog.New()

	case "RUN":
		_ = c.runProgram(prog, w)

	case "STATS":
		c.Stats = !c.Stats
		fmt.Fprintf(w, "toggling stats %s\n", switchSetting(c.Stats))

	case "TRACE":
		c.TraceDump = !c.TraceDump
		prog.SetTraceDump(c.TraceDump)
		fmt.Fprintf(w, "toggling trace %s\n", switchSetting(c.TraceDump))
	}

	return false
}

// We create two Liner instances.  One for commands and program lines,
// and one for INPUT.  We do this because we want a scrollback history
// for the former, but not for user input.  We need to create and
// destroy them in LIFO order, as the Close method is documented as
// 'restoring the terminal to its previous state'
//

type liners struct {
	parser *liner.State
	input  *liner.State
}

func setupLiners() *liners {

	return &liners{parser: setupLiner(false), input: setupLiner(true)}
}

func setupLiner(multiLine bool) *liner.State {

	l := liner.NewLiner()

	l.SetMultiLineMode(multiLine)
	l.SetCtrlCAborts(true)

	return l
}

func (l *liners) cleanup() {

	cleanupLiner(&l.input)
	cleanupLiner(&l.parser)
}

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

//
// Read a line from the terminal, with editing and history.  The bool
// is true at end of file (^D at the start of a line).  ^C just gives
// back an empty line
//

func readLine(l *liner.State, prompt string, history bool) (string, bool) {

	s, eof := promptResult(l.Prompt(prompt))

	if history && strings.TrimSpace(s) != "" {
		l.AppendHistory(s)
	}

	return s, eof
}

func promptResult(s string, err error) (string, bool) {

	switch {
	case err == nil:
		return s, false

	case errors.Is(err, liner.ErrPromptAborted):
		return "", false

	default:
		return "", true
	}
}

func versionString() string {

	if buildTimestampStr == "" {
		return VERSION
	}

	return VERSION + " - built " + buildTimestampStr
}

func printVersionInfo(w io.Writer) {

	fmt.Fprintf(w, "BASIC clone version %s\n", versionString())
}

func printStatistics(w io.Writer, prog *Program, clk cpuClock) {

	var mem runtime.MemStats

	n := prog.Statements()

	fmt.Fprintln(w)
	fmt.Fprintln(w, clk.usage())
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(w, "%dMB memory used\n", convertToMB(mem.HeapAlloc))
	fmt.Fprintf(w, "%d %s executed\n", n, pluralize("statement", n))
}
