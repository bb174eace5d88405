package main

import (
	"math"
	"strings"
)

//
// Builtin functions are table driven.  Each entry gives the allowed
// argument count range and the kind of each argument by position;
// callBuiltin checks both before the implementation runs, so the
// implementations only have to worry about domain errors
//

const maxStringLen = math.MaxInt16

type builtin struct {
	minArgs int
	maxArgs int
	kinds   []valueKind
	fn      func(p *Program, args []value, stmtNo int) value
}

var builtins = map[string]builtin{
	"ABS":    numericBuiltin(math.Abs),
	"ATN":    numericBuiltin(math.Atan),
	"COS":    numericBuiltin(math.Cos),
	"EXP":    numericBuiltin(math.Exp),
	"INT":    numericBuiltin(math.Floor),
	"SIN":    numericBuiltin(math.Sin),
	"TAN":    numericBuiltin(math.Tan),
	"SGN":    numericBuiltin(sgn),
	"LOG":    {1, 1, []valueKind{numberValue}, bifLog},
	"SQR":    {1, 1, []valueKind{numberValue}, bifSqr},
	"ASC":    {1, 1, []valueKind{stringValue}, bifAsc},
	"CHR$":   {1, 1, []valueKind{numberValue}, bifChr},
	"LEFT$":  {2, 2, []valueKind{stringValue, numberValue}, bifLeft},
	"RIGHT$": {2, 2, []valueKind{stringValue, numberValue}, bifRight},
	"MID$":   {2, 3, []valueKind{stringValue, numberValue, numberValue}, bifMid},
	"LEN":    {1, 1, []valueKind{stringValue}, bifLen},
	"STR":    {1, 1, []valueKind{numberValue}, bifStr},
	"VAL":    {1, 1, []valueKind{stringValue}, bifVal},
	"RND":    {1, 1, []valueKind{numberValue}, bifRnd},
	"SPC":    {1, 1, []valueKind{numberValue}, bifSpc},
	"TAB":    {1, 1, []valueKind{numberValue}, bifTab},
}

func numericBuiltin(f func(float64) float64) builtin {

	return builtin{1, 1, []valueKind{numberValue},
		func(p *Program, args []value, stmtNo int) value {
			return numValue(f(args[0].num))
		}}
}

func (p *Program) callBuiltin(name string, args []value, state *procState) value {

	bif, ok := builtins[name]
	basicAssert(ok, "no builtin named "+name)

	runtimeCheck(len(args) >= bif.minArgs && len(args) <= bif.maxArgs,
		state.stmtNo, errWrongArgumentCount)

	for i, arg := range args {
		runtimeCheck(arg.kind == bif.kinds[i], state.stmtNo, errTypeMismatch)
	}

	v := bif.fn(p, args, state.stmtNo)

	//
	// EXP(1000) and friends
	//

	if v.kind == numberValue {
		runtimeCheck(!math.IsNaN(v.num) && !math.IsInf(v.num, 0), state.stmtNo,
			errInvalidArgument)
	}

	return v
}

//
// Integer argument: truncated toward zero, and small enough to be a
// sensible count or position
//

func intArg(v value, stmtNo int) int {

	f := math.Trunc(v.num)

	runtimeCheck(f >= math.MinInt32 && f <= math.MaxInt32, stmtNo,
		errInvalidArgument)

	return int(f)
}

func sgn(f float64) float64 {

	switch {
	case f > 0:
		return 1

	case f < 0:
		return -1
	}

	return 0
}

func bifLog(p *Program, args []value, stmtNo int) value {

	runtimeCheck(args[0].num > 0, stmtNo, errInvalidArgument)

	return numValue(math.Log(args[0].num))
}

func bifSqr(p *Program, args []value, stmtNo int) value {

	runtimeCheck(args[0].num >= 0, stmtNo, errInvalidArgument)

	return numValue(math.Sqrt(args[0].num))
}

func bifAsc(p *Program, args []value, stmtNo int) value {

	s := args[0].str

	runtimeCheck(len(s) > 0, stmtNo, errInvalidArgument)

	return numValue(float64(s[0]))
}

func bifChr(p *Program, args []value, stmtNo int) value {

	n := intArg(args[0], stmtNo)

	runtimeCheck(n >= 0 && n <= 255, stmtNo, errInvalidArgument)

	return strValue(string([]byte{byte(n)}))
}

func bifLeft(p *Program, args []value, stmtNo int) value {

	s := args[0].str
	n := intArg(args[1], stmtNo)

	runtimeCheck(n >= 0, stmtNo, errInvalidArgument)

	return strValue(s[:min(n, len(s))])
}

func bifRight(p *Program, args []value, stmtNo int) value {

	s := args[0].str
	n := intArg(args[1], stmtNo)

	runtimeCheck(n >= 0, stmtNo, errInvalidArgument)

	return strValue(s[len(s)-min(n, len(s)):])
}

//
// MID$(s, start[, len]).  start counts from 1.  Running off the end of
// the string just gives less (or nothing)
//

func bifMid(p *Program, args []value, stmtNo int) value {

	s := args[0].str
	start := intArg(args[1], stmtNo)

	runtimeCheck(start >= 1, stmtNo, errInvalidArgument)

	if start > len(s) {
		return strValue("")
	}

	end := len(s)

	if len(args) == 3 {
		n := intArg(args[2], stmtNo)
		runtimeCheck(n >= 0, stmtNo, errInvalidArgument)
		end = min(start-1+n, len(s))
	}

	return strValue(s[start-1 : end])
}

func bifLen(p *Program, args []value, stmtNo int) value {

	return numValue(float64(len(args[0].str)))
}

func bifStr(p *Program, args []value, stmtNo int) value {

	n := args[0].num

	if n < 0 {
		return strValue(formatNumber(n))
	}

	return strValue(" " + formatNumber(n))
}

func bifVal(p *Program, args []value, stmtNo int) value {

	return numValue(convertFloat(args[0].str))
}

func bifRnd(p *Program, args []value, stmtNo int) value {

	return numValue(p.rnd(args[0].num))
}

func bifSpc(p *Program, args []value, stmtNo int) value {

	n := intArg(args[0], stmtNo)

	runtimeCheck(n >= 0 && n <= maxStringLen, stmtNo, errInvalidArgument)

	return strValue(strings.Repeat(" ", n))
}

//
// TAB(n) is relative to wherever the PRINT statement has got to on the
// current line.  If we are already past column n it gives nothing
//

func bifTab(p *Program, args []value, stmtNo int) value {

	n := intArg(args[0], stmtNo)

	runtimeCheck(n >= 0 && n <= maxStringLen, stmtNo, errInvalidArgument)

	return strValue(strings.Repeat(" ", max(0, n-p.p.column)))
}

//
// RND(x):
//
//	x > 0	step the generator, return a value in [0,1)
//	x < 0	reseed from x, return 0
//	x = 0	return the previous value again
//

func (p *Program) rnd(x float64) float64 {

	switch {
	case x > 0:
		p.r.rndSeed = uint32((uint64(p.r.rndSeed)*rndMultiplier + rndIncrement) % rndModulus)
		p.r.rndLast = float64(p.r.rndSeed) / rndModulus

	case x < 0:
		p.r.rndSeed = seedFrom(x)
		p.r.rndLast = 0
	}

	return p.r.rndLast
}

func seedFrom(x float64) uint32 {

	bits := math.Float64bits(x)

	return uint32((bits ^ bits>>32) % rndModulus)
}
