package policy

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantOK   bool
		wantRule Rule
		match    string
	}{
		{"allowed import", "import math\nprint(math.sqrt(16))", true, "", ""},
		{"no imports", "print(2 + 2)", true, "", ""},
		{"several allowed", "import math, statistics\nimport numpy as np", true, "", ""},
		{"from allowed", "from fractions import Fraction\nprint(Fraction(1, 3))", true, "", ""},
		{"dotted allowed", "import numpy.linalg\n", true, "", ""},
		{"os import", "import os\nos.system('ls')", false, RuleDenied, "os."},
		{"os import only", "import os", false, RuleImport, "os"},
		{"json import", "import json", false, RuleImport, "json"},
		{"mixed import list", "import math, json", false, RuleImport, "json"},
		{"from disallowed", "from collections import deque", false, RuleImport, "collections"},
		{"relative import", "from . import x", false, RuleImport, "."},
		{"open call", "import math\nf = open('/etc/passwd')", false, RuleDenied, "open("},
		{"denied in comment", "print(1)  # eval(x)", false, RuleDenied, "eval("},
		{"denied in string", "print('subprocess')", false, RuleDenied, "subprocess"},
		{"dunder import", "m = __import__('math')", false, RuleDenied, "__import__"},
		{"input", "x = input()", false, RuleDenied, "input("},
		{"import after semicolon", "x = 1; import json", false, RuleImport, "json"},
		{"continued import", "import \\\nio\nprint(io)", false, RuleImport, "io"},
		{"continued import list", "import math, \\\n    io", false, RuleImport, "io"},
		{"continued import crlf", "import \\\r\nio", false, RuleImport, "io"},
		{"dangling continuation", "import \\", false, RuleImport, "import"},
		{"bound method open", "f = print.__self__.open\nprint(f('/etc/hostname').read())", false, RuleDenied, "__self__"},
		{"bare open name", "f = open\nprint(f)", false, RuleDenied, "open"},
		{"numpy load", "import numpy as np\nprint(np.load('x.npy'))", false, RuleDenied, ".load("},
		{"opened in string", "print('opened')", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snip, err := Check(tt.src)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Check() error = %v", err)
				}
				if !snip.Valid() || snip.Source() != tt.src {
					t.Errorf("snippet = %+v, want valid copy of source", snip)
				}
				return
			}
			if err == nil {
				t.Fatal("Check() succeeded, want rejection")
			}
			if !errors.Is(err, ErrRejected) {
				t.Errorf("errors.Is(err, ErrRejected) = false for %v", err)
			}
			var rej *RejectionError
			if !errors.As(err, &rej) {
				t.Fatalf("error is %T, want *RejectionError", err)
			}
			if rej.Rule != tt.wantRule || rej.Match != tt.match {
				t.Errorf("rejection = %+v, want rule %q match %q", rej, tt.wantRule, tt.match)
			}
			if snip.Valid() {
				t.Error("rejected snippet must not be valid")
			}
		})
	}
}

func TestImportedModules(t *testing.T) {
	src := "import math, numpy.linalg as la\nfrom decimal import Decimal, getcontext\nimport random"
	got := ImportedModules(src)
	want := []string{"decimal", "math", "numpy", "random"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImportedModules() = %v, want %v", got, want)
	}

	got = ImportedModules("import math, \\\n    random\nimport \\")
	want = []string{"math", "random", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImportedModules() with continuations = %v, want %v", got, want)
	}
}

func TestZeroSnippetInvalid(t *testing.T) {
	var s Snippet
	if s.Valid() {
		t.Error("zero Snippet must not be valid")
	}
}

func TestDisallowedImportAlwaysRejected(t *testing.T) {
	modules := []string{"os", "sys", "json", "urllib", "http", "threading", "collections", "re"}
	prefixes := []string{"", "import math\n", "x = 1\n"}

	for _, m := range modules {
		for _, p := range prefixes {
			for _, src := range []string{
				p + "import " + m + "\nprint(1)",
				p + "import \\\n" + m + "\nprint(1)",
				p + "import math, \\\n    " + m + "\nprint(1)",
			} {
				if Validate(src) {
					t.Errorf("Validate(%q) = true, want false", src)
				}
			}
		}
	}
}

func TestDeniedSubstringAlwaysRejected(t *testing.T) {
	denied := append(append([]string(nil), DefaultDeniedSubstrings...), DefaultDeniedNames...)
	for _, d := range denied {
		src := "import math\nprint(math.pi)\n" + d
		if Validate(src) {
			t.Errorf("Validate with %q = true, want false", d)
		}
	}

	escapes := []string{
		"f = print.__self__.open\nprint(f('/etc/hostname').read())",
		"b = print.__self__\nprint(b)",
		"print(vars(math))",
		"print(dir(math))",
		"print((1).__class__.__mro__)",
		"print(int.__bases__)",
		"print(math.__dict__)",
		"import numpy as np\nprint(np.loadtxt('/etc/hostname'))",
		"import numpy as np\nprint(np.genfromtxt('/etc/hostname'))",
		"import numpy as np\nprint(np.fromfile('/etc/hostname'))",
		"import numpy as np\nnp.zeros(3).tofile('/tmp/x')",
		"import numpy as np\nnp.savetxt('/tmp/x', np.zeros(3))",
		"import numpy as np\nprint(np.load('/tmp/x.npy'))",
		"from numpy import load\nprint(load)",
		"import numpy as np\nprint(np.memmap('/tmp/x'))",
	}
	for _, src := range escapes {
		if Validate(src) {
			t.Errorf("Validate(%q) = true, want false", src)
		}
	}
}

// Snippets built only from digits, operators and whitespace contain neither
// an import nor a denied substring.
type arithmetic string

func (arithmetic) Generate(r *rand.Rand, size int) reflect.Value {
	const alphabet = "0123456789+-*/ ()\n\t."
	var b strings.Builder
	for i := 0; i < size; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return reflect.ValueOf(arithmetic(b.String()))
}

func TestPlainSnippetsAccepted(t *testing.T) {
	f := func(src arithmetic) bool {
		return Validate("print(" + string(src) + ")")
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestCustomPolicy(t *testing.T) {
	p := New([]string{"json"}, []string{"dumps"})
	if !p.Validate("import json\nprint(json.loads('1'))") {
		t.Error("json should be allowed by custom policy")
	}
	if p.Validate("import json\njson.dumps(1)") {
		t.Error("dumps should be denied by custom policy")
	}
	if got := p.AllowedModules(); !reflect.DeepEqual(got, []string{"json"}) {
		t.Errorf("AllowedModules() = %v", got)
	}
}
