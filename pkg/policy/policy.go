// Package policy decides whether a Python snippet may be executed.
//
// The check is a coarse lexical filter, not a parser: every imported module
// must be on an allow-list and the source must not contain any denied
// substring or denied name, wherever it appears (code, comment, or string
// literal). False positives are the accepted failure direction.
//
// A [Snippet] can only be obtained through [Policy.Check], so code that
// accepts a Snippet cannot be handed source that skipped validation.
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrRejected is matched by every error returned from Check.
var ErrRejected = errors.New("code rejected by policy")

// Rule names the policy rule that rejected a snippet.
type Rule string

const (
	RuleImport Rule = "import"
	RuleDenied Rule = "denied_substring"
)

// RejectionError describes why a snippet was rejected.
type RejectionError struct {
	Rule  Rule
	Match string
}

func (e *RejectionError) Error() string {
	switch e.Rule {
	case RuleImport:
		return fmt.Sprintf("code rejected: import of %q is not allowed", e.Match)
	default:
		return fmt.Sprintf("code rejected: %q is not allowed", e.Match)
	}
}

// Is reports ErrRejected so callers can use errors.Is.
func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// DefaultAllowedModules are the modules a snippet may import.
var DefaultAllowedModules = []string{
	"math",
	"numpy",
	"statistics",
	"random",
	"decimal",
	"fractions",
	"operator",
}

// DefaultDeniedSubstrings cover filesystem access, process spawning,
// dynamic evaluation, dynamic import, reflection and interactive input.
var DefaultDeniedSubstrings = []string{
	"open(",
	"os.",
	"sys.",
	"subprocess",
	"shutil",
	"socket",
	"pathlib",
	"ctypes",
	"pickle",
	"eval(",
	"exec(",
	"compile(",
	"__import__",
	"importlib",
	"input(",
	"breakpoint(",
	"globals(",
	"locals(",
	"getattr(",
	"setattr(",
	"delattr(",
	"__builtins__",
	"__subclasses__",
	"__globals__",
	"__code__",
	"__self__",
	"__dict__",
	"__class__",
	"__mro__",
	"__bases__",
	"__getattribute__",
	"__loader__",
	"__spec__",
	"vars(",
	"dir(",
	"help(",
	// numpy file I/O
	".load(",
	"loadtxt",
	"genfromtxt",
	"fromfile",
	"tofile",
	"savetxt",
	"memmap",
	"DataSource",
	"f2py",
}

// DefaultDeniedNames are identifiers rejected wherever they appear as a
// whole word, so a bare reference such as print.__self__.open is caught
// without a call paren. Words that merely contain them (opened, loads)
// pass.
var DefaultDeniedNames = []string{
	"open",
	"load",
}

var (
	// from X import a, b   (the names after import are not modules)
	fromImportPattern = regexp.MustCompile(`\bfrom\s+([.\w]+)\s+import\b[^\n;]*`)
	// import a, b.c as d
	importPattern = regexp.MustCompile(`\bimport\s+([^\n;#]+)`)

	continuation = strings.NewReplacer("\\\r\n", " ", "\\\n", " ")
)

// Policy is an immutable allow/deny configuration.
type Policy struct {
	allowed map[string]struct{}
	denied  []string
	names   *regexp.Regexp
}

// New creates a Policy from an allow-list of top-level module names and a
// list of denied substrings. DefaultDeniedNames always apply.
func New(allowedModules, deniedSubstrings []string) *Policy {
	allowed := make(map[string]struct{}, len(allowedModules))
	for _, m := range allowedModules {
		allowed[m] = struct{}{}
	}
	return &Policy{
		allowed: allowed,
		denied:  append([]string(nil), deniedSubstrings...),
		names:   wordPattern(DefaultDeniedNames),
	}
}

func wordPattern(names []string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var defaultPolicy = New(DefaultAllowedModules, DefaultDeniedSubstrings)

// Default returns the built-in policy.
func Default() *Policy {
	return defaultPolicy
}

// AllowedModules returns the sorted allow-list.
func (p *Policy) AllowedModules() []string {
	out := make([]string, 0, len(p.allowed))
	for m := range p.allowed {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Validate reports whether src passes the policy.
func (p *Policy) Validate(src string) bool {
	_, err := p.Check(src)
	return err == nil
}

// Check validates src and, on success, returns it wrapped as a Snippet.
// On failure the error is a *RejectionError.
func (p *Policy) Check(src string) (Snippet, error) {
	for _, d := range p.denied {
		if strings.Contains(src, d) {
			return Snippet{}, &RejectionError{Rule: RuleDenied, Match: d}
		}
	}
	if m := p.names.FindString(src); m != "" {
		return Snippet{}, &RejectionError{Rule: RuleDenied, Match: m}
	}

	for _, m := range ImportedModules(src) {
		if m == "" {
			return Snippet{}, &RejectionError{Rule: RuleImport, Match: "import"}
		}
		if _, ok := p.allowed[m]; !ok {
			return Snippet{}, &RejectionError{Rule: RuleImport, Match: m}
		}
	}

	return Snippet{source: src, valid: true}, nil
}

// Validate reports whether src passes the default policy.
func Validate(src string) bool {
	return defaultPolicy.Validate(src)
}

// Check validates src against the default policy.
func Check(src string) (Snippet, error) {
	return defaultPolicy.Check(src)
}

// ImportedModules returns the top-level module names imported by src, in
// order of appearance. Relative imports are returned with their leading dots.
// Backslash line continuations are joined first; an import clause that names
// no module yields an empty string.
func ImportedModules(src string) []string {
	src = continuation.Replace(src)
	var modules []string

	for _, m := range fromImportPattern.FindAllStringSubmatch(src, -1) {
		modules = append(modules, topLevel(m[1]))
	}
	rest := fromImportPattern.ReplaceAllString(src, "")

	for _, m := range importPattern.FindAllStringSubmatch(rest, -1) {
		clause := strings.Trim(strings.TrimSpace(m[1]), "()")
		for _, part := range strings.Split(clause, ",") {
			fields := strings.Fields(strings.Trim(part, "() \t\\"))
			if len(fields) == 0 {
				modules = append(modules, "")
				continue
			}
			modules = append(modules, topLevel(fields[0]))
		}
	}
	return modules
}

func topLevel(name string) string {
	if strings.HasPrefix(name, ".") {
		return name
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Snippet is source text that passed a policy check.
type Snippet struct {
	source string
	valid  bool
}

// Source returns the validated text verbatim.
func (s Snippet) Source() string {
	return s.source
}

// Valid reports whether s came from a successful Check. The zero Snippet is
// not valid.
func (s Snippet) Valid() bool {
	return s.valid
}
