package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewProgram returns an empty program.  Output goes nowhere and input
// is always empty unless options say otherwise.
func NewProgram(opts ...Option) *Program {

	p := &Program{
		program: newProgramTree(),
		out:     io.Discard,
		in:      func() string { return "" },
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		seed:    defaultSeed,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.initializeRun()

	return p
}

// WithOutput sets the sink for PRINT, STOP and error reports.
func WithOutput(w io.Writer) Option {

	return func(p *Program) {
		if w != nil {
			p.out = w
		}
	}
}

// WithInput sets the line provider reserved for INPUT.
func WithInput(fn func() string) Option {

	return func(p *Program) {
		if fn != nil {
			p.in = fn
		}
	}
}

// WithSeed sets the value RND restarts from at every run.
func WithSeed(seed uint32) Option {

	return func(p *Program) {
		p.seed = seed % rndModulus
	}
}

// WithLogger sets the logger for interpreter tracing.
func WithLogger(l *slog.Logger) Option {

	return func(p *Program) {
		if l != nil {
			p.log = l
		}
	}
}

// WithTraceDump dumps every tokenized line as it is added.
func WithTraceDump(on bool) Option {

	return func(p *Program) {
		p.traceDump = on
	}
}

// SetTraceDump turns token dumps on or off after construction.
func (p *Program) SetTraceDump(on bool) {

	p.traceDump = on
}

//
// Throw away everything left over from the last run
//

func (p *Program) initializeRun() {

	p.r = run{}

	p.initSymbolTable()

	p.r.rndSeed = p.seed
}

// Run executes the program from its lowest numbered line until END,
// STOP, an error, or the last line.  Variables, arrays and functions
// start out empty every time.
func (p *Program) Run() error {

	p.initializeRun()

	p.p.column = 0

	p.log.Debug("run started", slog.Int("lines", p.Len()))

	err := call(p.executeRunInternal)

	p.running = false

	p.log.Debug("run finished", slog.Int64("statements", p.r.numStatements),
		slog.Any("error", err))

	return err
}

func (p *Program) executeRunInternal() {

	p.running = true
	p.r.curStmt = p.stmtAvlTreeFirstInOrder()

	for p.running && p.r.curStmt != nil {
		p.executeLine()
	}

	p.running = false
}

// Statements returns how many statements the last run executed.
func (p *Program) Statements() int64 {

	return p.r.numStatements
}

//
// Execute every statement on the current line.  Statements are
// separated by ':'.  Dispatch starts after the line number.  If a
// statement stopped the program we leave the cursor alone, otherwise
// move on to the next line in order
//

func (p *Program) executeLine() {

	node := p.r.curStmt
	stmt := stmtOf(node)

	state := &procState{expr: stmt.tokens, idx: 1, stmtNo: stmt.stmtNo}

	for {
		p.executeStmt(state)
		p.r.numStatements++

		if !p.running {
			return
		}

		t, ok := state.next()
		if !ok {
			break
		}

		if !t.isOp(":") {
			runtimeErrorf(state.stmtNo, errSyntax, "UNEXPECTED %s", t.describe())
		}
	}

	p.r.curStmt = stmtAvlTreeNextInOrder(node)
}

//
// Dispatch one statement on its leading token.  An empty statement
// (as in 'PRINT 1::PRINT 2' or a trailing ':') does nothing
//

func (p *Program) executeStmt(state *procState) {

	t, ok := state.peek()
	if !ok || t.isOp(":") {
		return
	}

	p.log.Debug("execute", slog.Int("line", state.stmtNo),
		slog.String("stmt", t.text))

	if t.kind == identToken {
		p.executeLet(state)
		return
	}

	if t.kind != keywordToken {
		runtimeErrorf(state.stmtNo, errSyntax, "UNEXPECTED %s", t.describe())
	}

	state.idx++

	switch t.text {
	default:
		if unimplementedStmts[t.text] {
			runtimeError(state.stmtNo, errNotImplemented)
		}

		runtimeErrorf(state.stmtNo, errSyntax, "UNEXPECTED %s", t.describe())

	case "DATA", "REM":
		state.skipToEnd()

	case "DEF":
		p.executeDef(state)

	case "DIM":
		p.executeDim(state)

	case "END":
		p.running = false

	case "LET":
		p.executeLet(state)

	case "PRINT":
		p.executePrint(state)

	case "STOP":
		p.executeStop(state)
	}
}

//
// DEF FN name(param, ...) = expression
//
// The body is the rest of the line and is not looked at until the
// function is called
//

func (p *Program) executeDef(state *procState) {

	state.expect(keywordToken, "FN")

	fn := &userDef{name: state.expectIdent(), stmtNo: state.stmtNo}

	state.expect(operatorToken, "(")

	if !state.consume(operatorToken, ")") {
		for {
			fn.params = append(fn.params, state.expectIdent())

			if !state.consume(operatorToken, ",") {
				break
			}
		}

		state.expect(operatorToken, ")")
	}

	state.expect(operatorToken, "=")

	if state.atEnd() {
		runtimeErrorf(state.stmtNo, errSyntax, "EXPECTED EXPRESSION")
	}

	fn.body = state.expr[state.idx:]
	state.skipToEnd()

	p.defineFunction(fn)
}

//
// DIM A(10), B$(3, 4), ...
//

func (p *Program) executeDim(state *procState) {

	for {
		name := state.expectIdent()
		dims := p.evalSubscripts(state)

		p.dimArray(name, dims, state.stmtNo)

		if !state.consume(operatorToken, ",") {
			return
		}
	}
}

//
// [LET] name[(subscripts)] = expression
//
// Subscripts are evaluated before the right hand side
//

func (p *Program) executeLet(state *procState) {

	var subs []int

	name := state.expectIdent()

	if t, ok := state.peek(); ok && t.isOp("(") {
		subs = p.evalSubscripts(state)
	}

	state.expect(operatorToken, "=")

	v := p.evaluate(state)

	if subs != nil {
		p.storeArrayElem(name, subs, v, state.stmtNo)
	} else {
		p.storeVariable(name, v, state.stmtNo)
	}
}

//
// PRINT item [, | ; item]... [, | ;]
//
// The whole statement is built up in one buffer and written once.
// The output column is tracked as we go so that ',' and TAB() know
// where they are.  If an item fails nothing has been written, so the
// column goes back to where the statement started
//

func (p *Program) executePrint(state *procState) {

	var sb strings.Builder

	startColumn := p.p.column
	written := false

	defer func() {
		if !written {
			p.p.column = startColumn
		}
	}()

	trailingSep := false

	for {
		t, ok := state.peek()
		if !ok || t.isOp(":") {
			break
		}

		switch {
		case t.isOp(","):
			state.idx++
			p.emit(&sb, strings.Repeat(" ", zoneWidth-p.p.column%zoneWidth))
			trailingSep = true
			continue

		case t.isOp(";"):
			state.idx++
			trailingSep = true
			continue
		}

		p.emit(&sb, basicFormat(p.evaluate(state)))
		trailingSep = false

		//
		// Two items need something between them
		//

		if t, ok := state.peek(); ok && !(t.isOp(",") || t.isOp(";") || t.isOp(":")) {
			runtimeErrorf(state.stmtNo, errSyntax, "UNEXPECTED %s", t.describe())
		}
	}

	if !trailingSep {
		p.emit(&sb, "\n")
	}

	p.writeOutput(sb.String(), state.stmtNo)

	written = true
}

//
// STOP is not an error.  It prints the line it stopped at and halts
//

func (p *Program) executeStop(state *procState) {

	var sb strings.Builder

	p.emit(&sb, fmt.Sprintf("!BREAK IN LINE %d", state.stmtNo))

	p.writeOutput(sb.String(), state.stmtNo)

	p.running = false
}

// EndLine finishes a partly printed line, as left by a trailing ';'
// or by STOP, so that whatever the caller writes next starts on a
// fresh one.
func (p *Program) EndLine() {

	msg := p.resetPrint()

	p.p.column = 0

	if _, err := io.WriteString(p.out, msg); err != nil {
		p.log.Error("cannot end line", slog.Any("error", err))
	}
}

// Report writes a BASIC error to the output sink in the form
// "!MESSAGE IN LINE n".  A nil error writes nothing.
func (p *Program) Report(err error) {

	if err == nil {
		return
	}

	msg := p.resetPrint() + "!" + err.Error() + "\n"

	p.p.column = 0

	if _, werr := io.WriteString(p.out, msg); werr != nil {
		p.log.Error("cannot report error", slog.Any("error", werr))
	}
}
