package main

import (
	"math"
	"strings"
)

//
// Expressions are evaluated directly off the token slice, one
// function per precedence level, loosest first:
//
//	OR
//	AND
//	NOT
//	= <> < <= > >=
//	+ -
//	* /
//	^
//	unary + -
//	primary
//
// Truth values are 0 (false) and -1 (true).  AND, OR and NOT work on
// the bits of the integer part of their operands, which gives the
// usual answers for truth values and classic BASIC's answers for
// anything else (4 AND 5 is 4)
//

func (p *Program) evaluate(state *procState) value {

	return p.evalOr(state)
}

func (p *Program) evalOr(state *procState) value {

	left := p.evalAnd(state)

	for state.consume(keywordToken, "OR") {
		right := p.evalAnd(state)
		left = numValue(float64(toInt(left, state) | toInt(right, state)))
	}

	return left
}

func (p *Program) evalAnd(state *procState) value {

	left := p.evalNot(state)

	for state.consume(keywordToken, "AND") {
		right := p.evalNot(state)
		left = numValue(float64(toInt(left, state) & toInt(right, state)))
	}

	return left
}

func (p *Program) evalNot(state *procState) value {

	if state.consume(keywordToken, "NOT") {
		return numValue(float64(^toInt(p.evalNot(state), state)))
	}

	return p.evalRelational(state)
}

//
// Relational operators chain left to right, so 1 < 2 < 3 compares
// -1 with 3
//

func (p *Program) evalRelational(state *procState) value {

	left := p.evalAdditive(state)

	for {
		t, ok := state.peek()
		if !ok || t.kind != operatorToken || !isRelationalOp(t.text) {
			return left
		}

		state.idx++

		right := p.evalAdditive(state)
		left = compareValues(left, right, t.text, state)
	}
}

func isRelationalOp(op string) bool {

	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}

	return false
}

func compareValues(left, right value, op string, state *procState) value {

	var cmp int

	runtimeCheck(left.kind == right.kind, state.stmtNo, errTypeMismatch)

	if left.kind == stringValue {
		cmp = strings.Compare(left.str, right.str)
	} else if left.num < right.num {
		cmp = -1
	} else if left.num > right.num {
		cmp = 1
	}

	switch op {
	default:
		fatalError("unexpected relational operator " + op)

	case "=":
		return boolValue(cmp == 0)

	case "<>":
		return boolValue(cmp != 0)

	case "<":
		return boolValue(cmp < 0)

	case "<=":
		return boolValue(cmp <= 0)

	case ">":
		return boolValue(cmp > 0)

	case ">=":
		return boolValue(cmp >= 0)
	}

	return value{}
}

//
// '+' also concatenates two strings.  Everything else from here down
// is numbers only
//

func (p *Program) evalAdditive(state *procState) value {

	left := p.evalMultiplicative(state)

	for {
		t, ok := state.peek()
		if !ok || !(t.isOp("+") || t.isOp("-")) {
			return left
		}

		state.idx++

		right := p.evalMultiplicative(state)

		if t.text == "+" && left.kind == stringValue && right.kind == stringValue {
			left = strValue(left.str + right.str)
			continue
		}

		l, r := toNumber(left, state), toNumber(right, state)

		if t.text == "+" {
			left = numValue(l + r)
		} else {
			left = numValue(l - r)
		}
	}
}

func (p *Program) evalMultiplicative(state *procState) value {

	left := p.evalPower(state)

	for {
		t, ok := state.peek()
		if !ok || !(t.isOp("*") || t.isOp("/")) {
			return left
		}

		state.idx++

		l := toNumber(left, state)
		r := toNumber(p.evalPower(state), state)

		if t.text == "*" {
			left = numValue(l * r)
		} else {
			runtimeCheck(r != 0, state.stmtNo, errDivisionByZero)
			left = numValue(l / r)
		}
	}
}

//
// Exponentiation is right associative: gather the whole chain of
// operands, then fold from the right, so 2^2^3 is 2^8
//

func (p *Program) evalPower(state *procState) value {

	operands := []value{p.evalUnary(state)}

	for state.consume(operatorToken, "^") {
		operands = append(operands, p.evalUnary(state))
	}

	if len(operands) == 1 {
		return operands[0]
	}

	acc := toNumber(operands[len(operands)-1], state)

	for i := len(operands) - 2; i >= 0; i-- {
		acc = math.Pow(toNumber(operands[i], state), acc)
		runtimeCheck(!math.IsNaN(acc) && !math.IsInf(acc, 0), state.stmtNo,
			errInvalidArgument)
	}

	return numValue(acc)
}

//
// Any run of leading signs, so --5 is 5
//

func (p *Program) evalUnary(state *procState) value {

	sign := 1.0
	signed := false

	for {
		if state.consume(operatorToken, "-") {
			sign = -sign
		} else if !state.consume(operatorToken, "+") {
			break
		}

		signed = true
	}

	v := p.evalPrimary(state)

	if signed {
		return numValue(sign * toNumber(v, state))
	}

	return v
}

func (p *Program) evalPrimary(state *procState) value {

	t, ok := state.next()
	if !ok {
		runtimeErrorf(state.stmtNo, errSyntax, "EXPECTED EXPRESSION")
	}

	switch t.kind {
	case numberToken:
		return numValue(t.num)

	case stringToken:
		return strValue(t.text)

	case operatorToken:
		if t.text == "(" {
			v := p.evaluate(state)
			state.expect(operatorToken, ")")
			return v
		}

	case keywordToken:
		if t.text == "FN" {
			name := state.expectIdent()
			return p.callUserFunction(name, p.evalArgs(state), state)
		}

	case builtinToken:
		return p.callBuiltin(t.text, p.evalArgs(state), state)

	case identToken:
		if next, ok := state.peek(); ok && next.isOp("(") {
			return p.fetchArrayElem(t.text, p.evalSubscripts(state), state.stmtNo)
		}

		return p.lookupVariable(t.text)
	}

	runtimeErrorf(state.stmtNo, errSyntax, "UNEXPECTED %s", t.describe())

	return value{}
}

//
// Parenthesized, comma separated argument list.  An empty list '()'
// is allowed here; the callee decides whether that is acceptable
//

func (p *Program) evalArgs(state *procState) []value {

	var args []value

	state.expect(operatorToken, "(")

	if state.consume(operatorToken, ")") {
		return args
	}

	for {
		args = append(args, p.evaluate(state))

		if !state.consume(operatorToken, ",") {
			break
		}
	}

	state.expect(operatorToken, ")")

	return args
}

//
// Subscripts are numeric, truncated toward zero.  Anything too large
// to be an index is simply out of bounds
//

func (p *Program) evalSubscripts(state *procState) []int {

	args := p.evalArgs(state)

	if len(args) == 0 {
		runtimeErrorf(state.stmtNo, errSyntax, "EXPECTED EXPRESSION")
	}

	subs := make([]int, len(args))

	for i, arg := range args {
		f := math.Trunc(toNumber(arg, state))
		runtimeCheck(f >= math.MinInt32 && f <= math.MaxInt32, state.stmtNo,
			errOutOfArrayBounds)
		subs[i] = int(f)
	}

	return subs
}

//
// Call a DEF FN function.  Parameters are bound in a fresh frame that
// shadows the globals for the duration of the call (dynamic scope),
// and the frame is popped however the call ends
//

func (p *Program) callUserFunction(name string, args []value, state *procState) value {

	fn := p.lookupFunction(name, state.stmtNo)

	runtimeCheck(len(args) == len(fn.params), state.stmtNo,
		errWrongArgumentCount)

	p.pushParams(fn, args, state.stmtNo)
	defer p.popParams()

	body := &procState{expr: fn.body, stmtNo: state.stmtNo}

	v := p.evaluate(body)

	if t, ok := body.peek(); ok {
		runtimeErrorf(state.stmtNo, errSyntax, "UNEXPECTED %s", t.describe())
	}

	checkAssignable(fn.name, v, state.stmtNo)

	return v
}

//
// Type coercion helpers.  Nothing is converted between strings and
// numbers implicitly
//

func toNumber(v value, state *procState) float64 {

	runtimeCheck(v.kind == numberValue, state.stmtNo, errTypeMismatch)

	return v.num
}

func toInt(v value, state *procState) int64 {

	f := math.Trunc(toNumber(v, state))

	runtimeCheck(f >= math.MinInt64 && f < math.MaxInt64, state.stmtNo,
		errInvalidArgument)

	return int64(f)
}

func boolValue(b bool) value {

	if b {
		return numValue(boolTrue)
	}

	return numValue(boolFalse)
}

//
// Token cursor helpers
//

func (state *procState) atEnd() bool {

	return state.idx >= len(state.expr)
}

func (state *procState) peek() (token, bool) {

	if state.atEnd() {
		return token{}, false
	}

	return state.expr[state.idx], true
}

func (state *procState) next() (token, bool) {

	t, ok := state.peek()
	if ok {
		state.idx++
	}

	return t, ok
}

func (state *procState) consume(kind tokenKind, text string) bool {

	if t, ok := state.peek(); ok && t.is(kind, text) {
		state.idx++
		return true
	}

	return false
}

func (state *procState) expect(kind tokenKind, text string) {

	if !state.consume(kind, text) {
		runtimeErrorf(state.stmtNo, errSyntax, "EXPECTED %s OF VALUE '%s'",
			kindName(kind), text)
	}
}

func (state *procState) expectIdent() string {

	t, ok := state.peek()
	if !ok || t.kind != identToken {
		runtimeErrorf(state.stmtNo, errSyntax, "EXPECTED VARNAME")
	}

	state.idx++

	return t.text
}

func (state *procState) skipToEnd() {

	state.idx = len(state.expr)
}

func kindName(kind tokenKind) string {

	switch kind {
	case keywordToken:
		return "KEYWORD"

	case builtinToken:
		return "BUILTIN"

	case operatorToken:
		return "OPERATOR"

	case numberToken:
		return "NUMBER"

	case stringToken:
		return "STRING"

	case identToken:
		return "VARNAME"
	}

	return "TOKEN"
}
