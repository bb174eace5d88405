package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

//
// The BASIC error messages.  Every failure raised while adding a line
// or running a program wraps exactly one of these, so callers can test
// for a category with errors.Is
//

var (
	errLineNumbering             = errors.New("LINE NUMBERING ERROR")
	errUnterminatedQuote         = errors.New("EXPECTED CLOSING QUOTE")
	errInvalidIdentifier         = errors.New("INVALID VARNAME")
	errSyntax                    = errors.New("SYNTAX ERROR")
	errTypeMismatch              = errors.New("TYPE MISMATCH")
	errDivisionByZero            = errors.New("DIVISION BY ZERO")
	errOutOfArrayBounds          = errors.New("OUT OF ARRAY BOUNDS")
	errMismatchedArrayDimensions = errors.New("MISMATCHED ARRAY DIMENSIONS")
	errRedeclaredArray           = errors.New("REDECLARED ARRAY")
	errUndefinedFunction         = errors.New("UNDEFINED FUNCTION")
	errWrongArgumentCount        = errors.New("WRONG NUMBER OF ARGUMENTS")
	errInvalidArgument           = errors.New("INVALID ARGUMENT")
	errNotImplemented            = errors.New("NOT IMPLEMENTED YET")
	errRecursionDepth            = errors.New("FUNCTION RECURSION TOO DEEP")
)

//
// runtimeErrorInfo is the panic payload for BASIC errors, and also the
// error handed back to the caller once recovered.  detail, if present,
// replaces the generic message (syntax errors say what was expected)
//

type runtimeErrorInfo struct {
	err    error
	detail string
	stmtNo int
	raw    bool // stmtNo is the ordinal of the line as typed
}

func (e *runtimeErrorInfo) Error() string {

	if e.raw {
		return fmt.Sprintf("%s IN RAW LINE %d", e.message(), e.stmtNo)
	}

	return fmt.Sprintf("%s IN LINE %d", e.message(), e.stmtNo)
}

func (e *runtimeErrorInfo) Unwrap() error {

	return e.err
}

func (e *runtimeErrorInfo) message() string {

	if e.detail != "" {
		return e.detail
	}

	return e.err.Error()
}

//
// Interpreter botches (as opposed to errors in the user's program)
// carry the Go source location of whoever complained
//

type basicErrorInfo struct {
	msg  string
	file string
	line int
}

func (e *basicErrorInfo) Error() string {

	return fmt.Sprintf("%q at %s line %d", e.msg, filepath.Base(e.file), e.line)
}

func runtimeError(stmtNo int, err error) {

	panic(&runtimeErrorInfo{err: err, stmtNo: stmtNo})
}

//
// For a line whose own number is unusable all we can blame is where it
// came in the input
//

func rawLineError(rawLineNo int, err error) {

	panic(&runtimeErrorInfo{err: err, stmtNo: rawLineNo, raw: true})
}

func runtimeErrorf(stmtNo int, err error, f string, args ...any) {

	msg := strings.TrimRight(fmt.Sprintf(f, args...), "\n")

	panic(&runtimeErrorInfo{err: err, detail: msg, stmtNo: stmtNo})
}

func runtimeCheck(chk bool, stmtNo int, err error) {

	if !chk {
		runtimeError(stmtNo, err)
	}
}

func basicAssert(chk bool, msg string) {

	if !chk {
		fatalError(msg)
	}
}

func fatalError(msg string) {

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "???", 0
	}

	panic(&basicErrorInfo{strings.TrimRight(msg, "\n"), file, line})
}

//
// Wrapper routine for the public entry points.  BASIC errors are
// raised by panicking, so catch them here and hand them back to our
// caller as ordinary errors.  Anything else is a real Go panic and
// keeps going
//

func call(f func()) (err error) {

	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			default:
				panic(e)

			case *runtimeErrorInfo:
				err = e

			case *basicErrorInfo:
				err = e
			}
		}
	}()

	f()

	return nil
}
