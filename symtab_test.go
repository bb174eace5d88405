package main

import (
	"errors"
	"testing"
)

func TestArrays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lines   []string
		want    string
		wantErr error
	}{
		{"dim and use", []string{"10 DIM A(3)", "20 A(3)=7", "30 PRINT A(3);A(0)"}, "  7  0\n", nil},
		{"two dimensions", []string{"10 DIM C(2,3)", "20 C(2,3)=5", "30 C(1,0)=2", "40 PRINT C(2,3);C(1,0);C(0,3)"},
			"  5  2  0\n", nil},
		{"several per dim", []string{`10 DIM A(2),B$(2)`, `20 B$(1)="X"`, `30 A(2)=1`, `40 PRINT B$(1);A(2)`}, "X  1\n", nil},
		{"implicit dimension", []string{"10 B(10)=1", "20 PRINT B(10)"}, "  1\n", nil},
		{"truncated index", []string{"10 A(2.7)=9", "20 PRINT A(2)"}, "  9\n", nil},
		{"computed index", []string{"10 I=1", "20 A(I+1)=4", "30 PRINT A(2)"}, "  4\n", nil},
		{"separate namespaces", []string{"10 A=1", "20 A(1)=2", "30 PRINT A;A(1)"}, "  1  2\n", nil},
		{"string default", []string{`10 DIM S$(2)`, `20 PRINT "<";S$(1);">"`}, "<>\n", nil},
		{"over bound", []string{"10 DIM A(3)", "20 A(4)=1"}, "!OUT OF ARRAY BOUNDS IN LINE 20\n", errOutOfArrayBounds},
		{"negative index", []string{"10 PRINT A(-1)"}, "!OUT OF ARRAY BOUNDS IN LINE 10\n", errOutOfArrayBounds},
		{"implicit over bound", []string{"10 B(11)=1"}, "!OUT OF ARRAY BOUNDS IN LINE 10\n", errOutOfArrayBounds},
		{"wrong subscript count", []string{"10 DIM A(3)", "20 PRINT A(1,1)"},
			"!MISMATCHED ARRAY DIMENSIONS IN LINE 20\n", errMismatchedArrayDimensions},
		{"redeclared", []string{"10 DIM A(3)", "20 DIM A(3)"}, "!REDECLARED ARRAY IN LINE 20\n", errRedeclaredArray},
		{"dim after implicit use", []string{"10 A(1)=1", "20 DIM A(5)"}, "!REDECLARED ARRAY IN LINE 20\n", errRedeclaredArray},
		{"zero bound", []string{"10 DIM A(0)"}, "!INVALID ARGUMENT IN LINE 10\n", errInvalidArgument},
		{"too many cells", []string{"10 DIM A(65535,65535,65535,65535,65535)", "20 A(1,0,0,0,0)=7"},
			"!INVALID ARGUMENT IN LINE 10\n", errInvalidArgument},
		{"large but distinct", []string{"10 DIM A(65535,65535,65535)", "20 A(1,0,0)=7", "30 PRINT A(0,0,0);A(1,0,0)"},
			"  0  7\n", nil},
		{"too many implicit cells", []string{"10 A(0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0)=1"},
			"!INVALID ARGUMENT IN LINE 10\n", errInvalidArgument},
		{"string index", []string{`10 PRINT A("X")`}, "!TYPE MISMATCH IN LINE 10\n", errTypeMismatch},
		{"wrong element type", []string{`10 DIM A$(2)`, `20 A$(1)=5`}, "!TYPE MISMATCH IN LINE 20\n", errTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runLines(t, tt.lines...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserFunctions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lines   []string
		want    string
		wantErr error
	}{
		{"simple", []string{"10 DEF FN F(X)=X*2", "20 PRINT FN F(3)"}, "  6\n", nil},
		{"no space", []string{"10 DEF FNF(X)=X*2", "20 PRINT FNF(4)"}, "  8\n", nil},
		{"no parameters", []string{"10 DEF FN P()=3", "20 PRINT FN P()"}, "  3\n", nil},
		{"two parameters", []string{"10 DEF FN H(A,B)=A-B", "20 PRINT FN H(5,2)"}, "  3\n", nil},
		{"string function", []string{`10 DEF FN G$(A$)=A$+"!"`, `20 PRINT FN G$("HI")`}, "HI!\n", nil},
		{"parameter shadows global", []string{"10 X=5", "20 DEF FN F(X)=X+1", "30 PRINT FN F(1);X"}, "  2  5\n", nil},
		{"dynamic scope", []string{"10 DEF FN G(Y)=X+Y", "20 DEF FN F(X)=FN G(1)", "30 X=100", "40 PRINT FN F(5)"},
			"  6\n", nil},
		{"sees globals", []string{"10 DEF FN F(X)=X+K", "20 K=10", "30 PRINT FN F(1)"}, "  11\n", nil},
		{"redefinition", []string{"10 DEF FN F(X)=1", "20 DEF FN F(X)=2", "30 PRINT FN F(0)"}, "  2\n", nil},
		{"not yet defined", []string{"10 PRINT FN F(1)", "20 DEF FN F(X)=X"},
			"!UNDEFINED FUNCTION FN F IN LINE 10\n", errUndefinedFunction},
		{"undefined", []string{"10 PRINT FN Z(1)"}, "!UNDEFINED FUNCTION FN Z IN LINE 10\n", errUndefinedFunction},
		{"too many arguments", []string{"10 DEF FN F(X)=X", "20 PRINT FN F(1,2)"},
			"!WRONG NUMBER OF ARGUMENTS IN LINE 20\n", errWrongArgumentCount},
		{"too few arguments", []string{"10 DEF FN F(X,Y)=X", "20 PRINT FN F(1)"},
			"!WRONG NUMBER OF ARGUMENTS IN LINE 20\n", errWrongArgumentCount},
		{"argument type", []string{"10 DEF FN F(X)=X", `20 PRINT FN F("A")`},
			"!TYPE MISMATCH IN LINE 20\n", errTypeMismatch},
		{"result type", []string{`10 DEF FN F(X)="A"`, "20 PRINT FN F(1)"},
			"!TYPE MISMATCH IN LINE 20\n", errTypeMismatch},
		{"body not consumed", []string{"10 DEF FN F(X)=X 1", "20 PRINT FN F(1)"},
			"!UNEXPECTED NUMBER '1' IN LINE 20\n", errSyntax},
		{"runaway recursion", []string{"10 DEF FN F(X)=FN F(X)", "20 PRINT FN F(1)"},
			"!FUNCTION RECURSION TOO DEEP IN LINE 20\n", errRecursionDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runLines(t, tt.lines...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParamsPoppedAfterError(t *testing.T) {
	t.Parallel()

	p := NewProgram()

	for _, line := range []string{"10 DEF FN F(X)=1/X", "20 PRINT FN F(0)"} {
		if err := p.AddLine(line); err != nil {
			t.Fatalf("AddLine(%q): %v", line, err)
		}
	}

	if err := p.Run(); !errors.Is(err, errDivisionByZero) {
		t.Fatalf("Run error = %v, want %v", err, errDivisionByZero)
	}

	if n := len(p.r.userDefStack); n != 0 {
		t.Errorf("parameter stack depth = %d after error, want 0", n)
	}
}

func TestCheckAssignable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    value
		ok   bool
	}{
		{"A", numValue(1.5), true},
		{"A", strValue("X"), false},
		{"A$", strValue("X"), true},
		{"A$", numValue(1), false},
		{"A%", numValue(-3), true},
		{"A%", numValue(3.25), false},
		{"A%", strValue("3"), false},
	}

	for _, tt := range tests {
		err := call(func() { checkAssignable(tt.name, tt.v, 10) })

		if ok := err == nil; ok != tt.ok {
			t.Errorf("checkAssignable(%s, %v) error = %v, want ok=%v", tt.name, tt.v, err, tt.ok)
		}
	}
}

func TestLookupVariableFrames(t *testing.T) {
	t.Parallel()

	p := NewProgram()

	p.r.variables["X"] = numValue(1)
	fn := &userDef{name: "F", params: []string{"X"}}

	p.pushParams(fn, []value{numValue(2)}, 10)
	p.pushParams(&userDef{name: "G", params: []string{"Y"}}, []value{numValue(3)}, 10)

	if got := p.lookupVariable("X"); got.num != 2 {
		t.Errorf("X inside frames = %v, want 2", got)
	}

	p.popParams()
	p.popParams()

	if got := p.lookupVariable("X"); got.num != 1 {
		t.Errorf("X after pops = %v, want 1", got)
	}

	if got := p.lookupVariable("Z$"); got.kind != stringValue || got.str != "" {
		t.Errorf("unset Z$ = %v, want empty string", got)
	}
}
