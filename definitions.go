package main

import (
	"io"
	"log/slog"

	"github.com/emirpasic/gods/trees/avltree"
)

//
// Constants
//

const VERSION = "0.3.0"

const basFileSuffix = ".bas"

const fnRecursionMax = 1000

const maxImplicitSubscript = 10

const myPrompt = "% "

const zoneWidth = 14

const boolFalse float64 = 0
const boolTrue float64 = -1

//
// Linear congruential generator used by RND.  Same constants as the
// classic ANSI C rand()
//

const rndMultiplier = 1103515245
const rndIncrement = 12345
const rndModulus = 1 << 31

const defaultSeed = 0

//
// Token kinds produced by the lexer
//

type tokenKind int8

const (
	keywordToken tokenKind = iota
	builtinToken
	operatorToken
	numberToken
	stringToken
	identToken
)

//
// Value kinds.  A BASIC value is either a number or a string, never
// anything else, and which one a variable holds is fixed by its sigil
//

type valueKind int8

const (
	numberValue valueKind = iota
	stringValue
)

//
// Type definitions
//

type token struct {
	text         string
	num          float64
	kind         tokenKind
	unterminated bool
}

type stmtNode struct {
	line   string
	tokens []token
	stmtNo int
}

type value struct {
	str  string
	num  float64
	kind valueKind
}

//
// Arrays are sparse.  dims holds the inclusive upper bound of each
// axis, cells is keyed by the flattened index
//

type array struct {
	dims  []int
	cells map[int]value
}

type userDef struct {
	name   string
	params []string
	body   []token
	stmtNo int
}

//
// Expression evaluation state: the token slice being walked, the
// current position in it, and the statement number to blame for
// any error
//

type procState struct {
	expr   []token
	idx    int
	stmtNo int
}

//
// This structure contains the non-persistent state of a program,
// reinitialized by every RUN
//

type run struct {
	curStmt       *avltree.Node
	variables     map[string]value
	arrays        map[string]*array
	userDefMap    map[string]*userDef
	userDefStack  []map[string]value
	numStatements int64
	rndSeed       uint32
	rndLast       float64
}

//
// Print zone state
//

type printState struct {
	column int
}

// Program is a BASIC program together with everything needed to run it.
// A Program is not safe for concurrent use.
type Program struct {
	program   *avltree.Tree
	r         run
	p         printState
	out       io.Writer
	in        func() string
	log       *slog.Logger
	seed      uint32
	rawLines  int
	running   bool
	traceDump bool
}

// Option configures a [Program].
type Option func(*Program)

//
// Closed sets recognized by the lexer
//

var keywords = []string{
	"AND", "DATA", "DEF", "DIM", "END", "FN", "FOR",
	"GO", "IF", "INPUT", "LET", "NEXT", "NOT", "ON", "OR",
	"PRINT", "RANDOMIZE", "READ", "REM", "RESTORE",
	"RETURN", "STEP", "STOP", "SUB", "THEN", "TO",
}

var builtinNames = []string{
	"ABS", "ASC", "ATN",
	"CHR$", "COS", "EXP",
	"INT", "LEFT$", "LEN",
	"LOG", "MID$", "RIGHT$",
	"RND", "SGN", "SIN",
	"SPC", "SQR", "STR",
	"TAB", "TAN", "VAL",
}

var operators = []string{
	"+", "-", "^",
	"*", "/",
	"<=", ">=", "<>",
	"<", ">", "=",
	"(", ")", ":", ";",
	",",
}

//
// Statements the dispatcher recognizes but does not (yet) execute
//

var unimplementedStmts = map[string]bool{
	"FOR": true, "GO": true, "IF": true, "INPUT": true, "NEXT": true,
	"ON": true, "RANDOMIZE": true, "READ": true, "RESTORE": true,
	"RETURN": true,
}

var buildTimestampStr string
