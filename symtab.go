package main

import (
	"context"
	"log/slog"
	"math"
)

// A complication arises from the fact that BASIC allows scalar and
// array variables to have the same name.  They live in separate maps,
// as do user defined functions, so A, A(3) and FN A are three
// unrelated things.
//
// Names arrive here already canonicalized by the lexer, so the last
// character tells us the type: '$' is a string, '%' a whole number,
// anything else a real number
//

//
// Initialize the symbol tables to pristine state
//

func (p *Program) initSymbolTable() {

	p.r.variables = make(map[string]value)
	p.r.arrays = make(map[string]*array)
	p.r.userDefMap = make(map[string]*userDef)
	p.r.userDefStack = nil
}

func sigilOf(name string) byte {

	if name == "" {
		return 0
	}

	switch ch := name[len(name)-1]; ch {
	case '$', '%':
		return ch
	}

	return 0
}

func isStringName(name string) bool {

	return sigilOf(name) == '$'
}

func defaultValue(name string) value {

	if isStringName(name) {
		return strValue("")
	}

	return numValue(0)
}

//
// Enforce the type implied by a name's sigil on a value about to be
// stored under (or bound to) that name
//

func checkAssignable(name string, v value, stmtNo int) {

	switch sigilOf(name) {
	case '$':
		runtimeCheck(v.kind == stringValue, stmtNo, errTypeMismatch)

	case '%':
		runtimeCheck(v.kind == numberValue && isWhole(v.num), stmtNo,
			errTypeMismatch)

	default:
		runtimeCheck(v.kind == numberValue, stmtNo, errTypeMismatch)
	}
}

func isWhole(f float64) bool {

	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

//
// Scalar variables.  Function parameters shadow globals: the innermost
// frame that binds the name wins, falling back to the global table,
// falling back to the type's zero value
//

func (p *Program) lookupVariable(name string) value {

	for i := len(p.r.userDefStack) - 1; i >= 0; i-- {
		if v, ok := p.r.userDefStack[i][name]; ok {
			return v
		}
	}

	if v, ok := p.r.variables[name]; ok {
		return v
	}

	return defaultValue(name)
}

func (p *Program) storeVariable(name string, v value, stmtNo int) {

	checkAssignable(name, v, stmtNo)

	p.traceVar(name, nil, p.r.variables[name], v)

	p.r.variables[name] = v
}

//
// Arrays.  Bounds are inclusive, so DIM A(10) allows A(0) through
// A(10).  An array referenced before any DIM is created on the spot
// with maxImplicitSubscript on every axis it was used with
//

func (p *Program) dimArray(name string, dims []int, stmtNo int) {

	_, exists := p.r.arrays[name]
	runtimeCheck(!exists, stmtNo, errRedeclaredArray)

	for _, d := range dims {
		runtimeCheck(d >= 1, stmtNo, errInvalidArgument)
	}

	p.r.arrays[name] = newArray(dims, stmtNo)
}

//
// Every cell needs its own flat index, so the total cell count has to
// fit in an int
//

func newArray(dims []int, stmtNo int) *array {

	cells := 1

	for _, d := range dims {
		runtimeCheck(cells <= math.MaxInt/(d+1), stmtNo, errInvalidArgument)
		cells *= d + 1
	}

	return &array{dims: dims, cells: make(map[int]value)}
}

func (p *Program) lookupArray(name string, nsubs int, stmtNo int) *array {

	arr := p.r.arrays[name]
	if arr == nil {
		dims := make([]int, nsubs)
		for i := range dims {
			dims[i] = maxImplicitSubscript
		}

		arr = newArray(dims, stmtNo)
		p.r.arrays[name] = arr
	}

	runtimeCheck(len(arr.dims) == nsubs, stmtNo, errMismatchedArrayDimensions)

	return arr
}

//
// Flatten a subscript list, most significant axis first
//

func (arr *array) computeSubs(subs []int, stmtNo int) int {

	runtimeCheck(len(subs) == len(arr.dims), stmtNo,
		errMismatchedArrayDimensions)

	flat := 0

	for i, sub := range subs {
		runtimeCheck(sub >= 0 && sub <= arr.dims[i], stmtNo,
			errOutOfArrayBounds)
		flat = flat*(arr.dims[i]+1) + sub
	}

	return flat
}

func (p *Program) fetchArrayElem(name string, subs []int, stmtNo int) value {

	arr := p.lookupArray(name, len(subs), stmtNo)

	if v, ok := arr.cells[arr.computeSubs(subs, stmtNo)]; ok {
		return v
	}

	return defaultValue(name)
}

func (p *Program) storeArrayElem(name string, subs []int, v value, stmtNo int) {

	arr := p.lookupArray(name, len(subs), stmtNo)
	flat := arr.computeSubs(subs, stmtNo)

	checkAssignable(name, v, stmtNo)

	p.traceVar(name, subs, arr.cells[flat], v)

	arr.cells[flat] = v
}

//
// User defined functions.  DEF simply replaces an earlier definition
// of the same name
//

func (p *Program) defineFunction(fn *userDef) {

	p.r.userDefMap[fn.name] = fn
}

func (p *Program) lookupFunction(name string, stmtNo int) *userDef {

	fn := p.r.userDefMap[name]
	if fn == nil {
		runtimeErrorf(stmtNo, errUndefinedFunction, "UNDEFINED FUNCTION FN %s", name)
	}

	return fn
}

//
// Bind parameters for a function call.  The new frame shadows every
// frame below it and the globals; popping it puts things back exactly
// as they were, since nothing below was touched
//

func (p *Program) pushParams(fn *userDef, args []value, stmtNo int) {

	runtimeCheck(len(p.r.userDefStack) < fnRecursionMax, stmtNo,
		errRecursionDepth)

	runtimeCheck(len(args) == len(fn.params), stmtNo, errWrongArgumentCount)

	frame := make(map[string]value, len(fn.params))

	for i, name := range fn.params {
		checkAssignable(name, args[i], stmtNo)
		frame[name] = args[i]
	}

	p.r.userDefStack = append(p.r.userDefStack, frame)
}

func (p *Program) popParams() {

	basicAssert(len(p.r.userDefStack) > 0, "parameter stack underflow")

	p.r.userDefStack = p.r.userDefStack[:len(p.r.userDefStack)-1]
}

func (p *Program) traceVar(name string, subs []int, oval, nval value) {

	if !p.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{slog.String("name", name)}
	if subs != nil {
		attrs = append(attrs, slog.Any("subscripts", subs))
	}

	attrs = append(attrs, slog.String("from", oval.String()),
		slog.String("to", nval.String()))

	p.log.Debug("variable changed", attrs...)
}
