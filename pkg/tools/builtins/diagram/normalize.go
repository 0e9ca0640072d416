// Package diagram provides the create_diagram tool. Model-written Mermaid
// text is canonicalized so it always starts with the header for the
// requested diagram type.
package diagram

import (
	"regexp"
	"strings"
)

// Type is a supported diagram kind.
type Type string

const (
	Flowchart Type = "flowchart"
	Sequence  Type = "sequence"
	Class     Type = "class"
	State     Type = "state"
	ER        Type = "er"
	Gantt     Type = "gantt"
)

// Types lists the supported kinds in declaration order.
var Types = []Type{Flowchart, Sequence, Class, State, ER, Gantt}

var headers = map[Type]string{
	Flowchart: "flowchart TD",
	Sequence:  "sequenceDiagram",
	Class:     "classDiagram",
	State:     "stateDiagram-v2",
	ER:        "erDiagram",
	Gantt:     "gantt",
}

var (
	blankRuns = regexp.MustCompile(`\n{2,}`)
	// graph TD, flowchart LR;, or a bare flowchart keyword on its own line.
	flowchartHeader = regexp.MustCompile(`^(graph|flowchart)(\s+[A-Za-z]{2})?\s*;?$`)
)

// Header returns the canonical first line for t.
func Header(t Type) (string, bool) {
	h, ok := headers[t]
	return h, ok
}

// Normalize canonicalizes code for diagram type t. The result starts with
// Header(t) and Normalize(Normalize(x, t), t) == Normalize(x, t). An unknown
// type only gets the text cleanup.
func Normalize(code string, t Type) string {
	s := clean(code)

	header, ok := headers[t]
	if !ok {
		return s
	}

	if t == Flowchart {
		s = stripFlowchartHeaders(s)
	}

	switch {
	case s == "":
		return header
	case strings.HasPrefix(s, header) && t != Flowchart:
		return s
	default:
		return header + "\n" + s
	}
}

// clean drops carriage returns, trims, unescapes, drops stray TD directive
// lines and collapses blank line runs. Its output is a fixed point of clean.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSpace(s)
	s = unescape(s)
	s = strings.TrimSpace(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "TD" {
			continue
		}
		kept = append(kept, line)
	}
	s = strings.Join(kept, "\n")

	s = blankRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// unescape turns literal \n into a newline and \\ into a backslash,
// repeating until nothing changes so doubly escaped input is handled.
func unescape(s string) string {
	for {
		next := unescapeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func unescapeOnce(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// stripFlowchartHeaders removes every leading graph/flowchart header line so
// a single canonical header can be prepended.
func stripFlowchartHeaders(s string) string {
	lines := strings.Split(s, "\n")
	i := 0
	for i < len(lines) && flowchartHeader.MatchString(strings.TrimSpace(lines[i])) {
		i++
	}
	return strings.Join(lines[i:], "\n")
}
