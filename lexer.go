package main

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

//
// A word that is not a keyword, builtin or operator is either a number
// or an identifier.  Identifiers must look like letters, optional
// digits, optional type sigil
//

var numberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)(E[+-]?\d+)?$`)
var mantissaRe = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)E$`)
var identRe = regexp.MustCompile(`^([A-Za-z]+)(\d*)([$%]?)$`)

//
// Break one raw source line into tokens.  Everything outside of double
// quotes is upper-cased first; string contents are kept exactly as
// typed.  At each position we try, in order: a string, the longest
// keyword, the longest builtin name, the longest operator.  If none of
// those match, characters are gathered into a word until whitespace or
// something that does match.  Keywords are recognized anywhere, so
// 'PRINTX' is PRINT followed by X, and 'GOTO' is GO TO.  A consequence
// is that variable names cannot contain reserved words
//

func tokenizeLine(src string) []token {

	var toks []token

	s := upcaseUnquoted(src)

	for i := 0; i < len(s); {
		if isBlank(s[i]) {
			i++
			continue
		}

		//
		// Strings run to the next quote.  If we fall off the end of
		// the line, flag the token so the caller can reject the line
		//

		if s[i] == '"' {
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				toks = append(toks, token{kind: stringToken, text: s[i+1:],
					unterminated: true})
				break
			}

			toks = append(toks, token{kind: stringToken, text: s[i+1 : i+1+end]})
			i += end + 2
			continue
		}

		if t, n := matchFixed(s[i:]); n > 0 {
			toks = append(toks, t)
			i += n
			continue
		}

		j := scanWord(s, i)
		toks = append(toks, classifyWord(s[i:j]))
		i = j
	}

	return toks
}

//
// Upper-case everything that is not inside a quoted string
//

func upcaseUnquoted(src string) string {

	var sb strings.Builder
	var quoting bool

	sb.Grow(len(src))

	for _, ch := range src {
		if ch == '"' {
			quoting = !quoting
		}

		if quoting {
			sb.WriteRune(ch)
		} else {
			sb.WriteRune(unicode.ToUpper(ch))
		}
	}

	return sb.String()
}

//
// Try the fixed token sets in priority order, returning the token and
// the number of bytes it covers (0 if nothing matched)
//

func matchFixed(s string) (token, int) {

	if kw := longestPrefix(s, keywords); kw != "" {
		return token{kind: keywordToken, text: kw}, len(kw)
	}

	if bif := longestPrefix(s, builtinNames); bif != "" {
		return token{kind: builtinToken, text: bif}, len(bif)
	}

	if op := longestPrefix(s, operators); op != "" {
		return token{kind: operatorToken, text: op}, len(op)
	}

	return token{}, 0
}

func longestPrefix(s string, set []string) string {

	var best string

	for _, w := range set {
		if len(w) > len(best) && strings.HasPrefix(s, w) {
			best = w
		}
	}

	return best
}

//
// Gather a word starting at s[start].  The first character is known not
// to start a fixed token.  Complication: '1E-5' would otherwise stop at
// the '-' operator, so a sign directly after the exponent marker of a
// numeric mantissa is kept in the word
//

func scanWord(s string, start int) int {

	j := start + 1

	for j < len(s) {
		ch := s[j]

		if isBlank(ch) || ch == '"' {
			break
		}

		if (ch == '+' || ch == '-') && mantissaRe.MatchString(s[start:j]) {
			j++
			continue
		}

		if _, n := matchFixed(s[j:]); n > 0 {
			break
		}

		j++
	}

	return j
}

func classifyWord(word string) token {

	if numberRe.MatchString(word) {
		// Out of range literals come back infinite and are rejected
		// when the line is stored
		f, _ := strconv.ParseFloat(word, 64)
		return token{kind: numberToken, text: word, num: f}
	}

	return token{kind: identToken, text: word}
}

//
// Rewrite an identifier into its storage key: the first two letters,
// the first digit if any, and the sigil if any.  So 'COUNTER9' and
// 'CO9' are the same variable
//

func canonicalName(ident string) (string, bool) {

	m := identRe.FindStringSubmatch(ident)
	if m == nil {
		return "", false
	}

	letters, digits, sigil := strings.ToUpper(m[1]), m[2], m[3]

	name := letters[:min(2, len(letters))]
	if digits != "" {
		name += digits[:1]
	}

	return name + sigil, true
}

// Only ASCII whitespace separates tokens.  The scanner works on bytes,
// and bytes such as 0x85 and 0xA0 may be part of a UTF-8 character.
func isBlank(ch byte) bool {

	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}

	return false
}

//
// Turn a raw source line into a statement node.  rawLineNo is the
// ordinal of the line as typed, which is all we can blame when the
// line number itself is bad.  Errors panic (see runtimeError), the
// caller is expected to be running under call()
//

func parseStmtLine(src string, rawLineNo int) *stmtNode {

	toks := tokenizeLine(src)

	if len(toks) == 0 || toks[0].kind != numberToken {
		rawLineError(rawLineNo, errLineNumbering)
	}

	num := toks[0].num
	if num < 0 || num != math.Trunc(num) || num > math.MaxInt32 {
		rawLineError(rawLineNo, errLineNumbering)
	}

	stmtNo := int(num)

	for i := range toks {
		switch toks[i].kind {
		case numberToken:
			if math.IsInf(toks[i].num, 0) {
				runtimeError(stmtNo, errInvalidArgument)
			}

		case stringToken:
			if toks[i].unterminated {
				runtimeError(stmtNo, errUnterminatedQuote)
			}

		case identToken:
			name, ok := canonicalName(toks[i].text)
			if !ok {
				runtimeError(stmtNo, errInvalidIdentifier)
			}

			toks[i].text = name
		}
	}

	return &stmtNode{stmtNo: stmtNo, tokens: toks, line: trimWhitespace(src)}
}

//
// Token predicates used all over the statement and expression code
//

func (t token) is(kind tokenKind, text string) bool {

	return t.kind == kind && t.text == text
}

func (t token) isOp(text string) bool {

	return t.is(operatorToken, text)
}

func (t token) describe() string {

	switch t.kind {
	default:
		return "TOKEN '" + t.text + "'"

	case keywordToken:
		return "KEYWORD '" + t.text + "'"

	case builtinToken:
		return "BUILTIN '" + t.text + "'"

	case operatorToken:
		return "OPERATOR '" + t.text + "'"

	case numberToken:
		return "NUMBER '" + t.text + "'"

	case stringToken:
		return "STRING \"" + t.text + "\""

	case identToken:
		return "VARNAME '" + t.text + "'"
	}
}
