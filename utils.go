package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tklauser/go-sysconf"
)

//
// Prettify a source line for LIST.  Eliminate leading and trailing
// whitespace, and replace runs of whitespace elsewhere with a single
// space character if not inside a quoted string
//

func trimWhitespace(s string) string {

	var dst []byte
	var lastWasBlank bool
	var quoting bool

	for _, ch := range []byte(s) {
		if ch == '"' {
			quoting = !quoting
			dst = append(dst, ch)
			lastWasBlank = false
			continue
		}

		if quoting {
			dst = append(dst, ch)
			continue
		}

		if unicode.IsSpace(rune(ch)) {
			if !lastWasBlank {
				lastWasBlank = true
				dst = append(dst, ' ')
			}
		} else {
			lastWasBlank = false
			dst = append(dst, ch)
		}
	}

	return string(bytes.Trim(dst, " \t"))
}

//
// Convert the longest numeric prefix of a string.  Anything that does
// not start with a number, or is out of range, is 0.  A regexp rather
// than a bare ParseFloat keeps out the things Go accepts and BASIC
// doesn't ('INF', '0x10', '1_000')
//

var numericPrefixRe = regexp.MustCompile(`^[ \t]*[+-]?(\d+\.?\d*|\.\d+)([Ee][+-]?\d+)?`)

func convertFloat(s string) float64 {

	m := numericPrefixRe.FindString(s)
	if m == "" {
		return 0
	}

	f, err := strconv.ParseFloat(strings.TrimLeft(m, " \t"), 64)
	if err != nil {
		return 0
	}

	return f
}

//
// The shortest text that reads back as the same number.  Very large
// and very small magnitudes switch to exponent form
//

func formatNumber(f float64) string {

	if f == 0 {
		return "0"
	}

	if a := math.Abs(f); a >= 1e21 || a < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)

		//
		// Go pads the exponent to two digits: 1e-07.  We want 1e-7
		//

		if i := strings.IndexByte(s, 'e'); i >= 0 && len(s) > i+3 && s[i+2] == '0' {
			s = s[:i+2] + s[i+3:]
		}

		return s
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

//
// basicFormat renders a PRINT item.  Numbers get a leading space,
// plus a second one where a minus sign would go, so 42 prints as
// '  42' and -5 as ' -5'.  Strings print as they are
//

func basicFormat(v value) string {

	if v.kind == stringValue {
		return v.str
	}

	if v.num < 0 {
		return " " + formatNumber(v.num)
	}

	return "  " + formatNumber(v.num)
}

func numValue(f float64) value {

	return value{kind: numberValue, num: f}
}

func strValue(s string) value {

	return value{kind: stringValue, str: s}
}

func (v value) String() string {

	if v.kind == stringValue {
		return strconv.Quote(v.str)
	}

	return formatNumber(v.num)
}

//
// Append text to a statement's output, keeping track of the column.
// The column is the number of characters since the last newline
//

func (p *Program) emit(sb *strings.Builder, s string) {

	sb.WriteString(s)

	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.p.column = len(s) - i - 1
	} else {
		p.p.column += len(s)
	}
}

//
// If we are in the middle of a line, whatever comes next (an error
// report, or the driver's prompt) needs to start on a fresh one.  Returns the text to
// write, the caller resets the column
//

func (p *Program) resetPrint() string {

	if p.p.column != 0 {
		return "\n"
	}

	return ""
}

func (p *Program) writeOutput(msg string, stmtNo int) {

	if msg == "" {
		return
	}

	if _, err := io.WriteString(p.out, msg); err != nil {
		runtimeError(stmtNo, err)
	}
}

//
// Return valid suffix if present.  Only the last path element counts,
// so '../progs/hello.bas' is fine
//

func getFilenameSuffix(filename string) (string, bool) {

	strs := strings.Split(filepath.Base(filename), ".")

	switch len(strs) {
	default:
		return "", false

	case 1:
		return "", true

	case 2:
		return "." + strs[1], true
	}
}

//
// Take a filename for a source program and sanity check any
// possible suffix.  If no suffix, append ".bas" and return
// the new filename
//

func validateProgramFilename(filename string) (string, bool) {

	suffix, ok := getFilenameSuffix(filename)
	if !ok || (suffix != "" && suffix != basFileSuffix) {
		return "", false
	} else if suffix == "" {
		return filename + basFileSuffix, true
	}

	return filename, true
}

func pluralize(str string, num int64) string {

	//
	// Oddity: 0 is considered plural
	//

	if num != 1 {
		return str + "s"
	}

	return str
}

func switchSetting(b bool) string {

	if b {
		return "ON"
	}

	return "OFF"
}

func convertToMB(num uint64) uint64 {

	const MB = 1024 * 1024

	return (num + MB - 1) / MB
}

//
// CPU accounting for the stats display.  The kernel reports user and
// system time in clock ticks
//

type cpuClock struct {
	elapsed time.Time
	utime   int64
	stime   int64
}

func startClock() cpuClock {

	utime, stime, _ := getCPUInfo()

	return cpuClock{elapsed: time.Now(), utime: utime, stime: stime}
}

func (c cpuClock) usage() string {

	elapsed := time.Since(c.elapsed)

	utime, stime, err := getCPUInfo()
	if err != nil {
		return fmt.Sprintf("CPU Usage: elapsed = %s",
			formatCPUTime(int64(elapsed.Seconds())))
	}

	return fmt.Sprintf("CPU Usage: elapsed = %s / user = %s / system = %s",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-c.utime), formatCPUTime(stime-c.stime))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

func getCPUInfo() (int64, int64, error) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		return 0, 0, err
	}

	if clktck <= 0 {
		return 0, 0, fmt.Errorf("bad clock tick rate %d", clktck)
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0, err
	}

	fields := strings.Fields(string(contents))
	if len(fields) < 15 {
		return 0, 0, fmt.Errorf("short /proc/self/stat (%d fields)", len(fields))
	}

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		return 0, 0, err
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		return 0, 0, err
	}

	return utime / clktck, stime / clktck, nil
}
