package diagram

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/tools"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		code string
		typ  Type
		want string
	}{
		{
			name: "prepends flowchart header",
			code: "A-->B",
			typ:  Flowchart,
			want: "flowchart TD\nA-->B",
		},
		{
			name: "escaped newlines",
			code: `A-->B\nB-->C`,
			typ:  Flowchart,
			want: "flowchart TD\nA-->B\nB-->C",
		},
		{
			name: "doubly escaped newlines",
			code: `A-->B\\nB-->C`,
			typ:  Flowchart,
			want: "flowchart TD\nA-->B\nB-->C",
		},
		{
			name: "doubled flowchart headers",
			code: "graph TD\nflowchart TD\nA-->B",
			typ:  Flowchart,
			want: "flowchart TD\nA-->B",
		},
		{
			name: "stray TD line",
			code: "flowchart\nTD\nA-->B",
			typ:  Flowchart,
			want: "flowchart TD\nA-->B",
		},
		{
			name: "blank line runs collapse",
			code: "  sequenceDiagram\n\n\nAlice->>Bob: hi\n\n",
			typ:  Sequence,
			want: "sequenceDiagram\nAlice->>Bob: hi",
		},
		{
			name: "existing header kept",
			code: "classDiagram\nA <|-- B",
			typ:  Class,
			want: "classDiagram\nA <|-- B",
		},
		{
			name: "state header",
			code: "[*] --> Idle",
			typ:  State,
			want: "stateDiagram-v2\n[*] --> Idle",
		},
		{
			name: "er header",
			code: "CUSTOMER ||--o{ ORDER : places",
			typ:  ER,
			want: "erDiagram\nCUSTOMER ||--o{ ORDER : places",
		},
		{
			name: "gantt with CRLF",
			code: "title Plan\r\nsection A",
			typ:  Gantt,
			want: "gantt\ntitle Plan\nsection A",
		},
		{
			name: "empty input",
			code: "   ",
			typ:  Gantt,
			want: "gantt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.code, tt.typ); got != tt.want {
				t.Errorf("Normalize(%q, %s) = %q, want %q", tt.code, tt.typ, got, tt.want)
			}
		})
	}
}

// mermaidish generates text built from fragments that exercise every
// normalization rule.
type mermaidish string

func (mermaidish) Generate(r *rand.Rand, size int) reflect.Value {
	fragments := []string{
		`\`, `n`, `\n`, `\\`, `\\n`, "\n", "\n\n", " ", "\t", "\r", "\r\n",
		"TD", "graph TD", "flowchart TD", "flowchart", "graph LR;",
		"A-->B", "sequenceDiagram", "classDiagram", "gantt", "x",
	}
	var b strings.Builder
	for i := 0; i < size; i++ {
		b.WriteString(fragments[r.Intn(len(fragments))])
	}
	return reflect.ValueOf(mermaidish(b.String()))
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, typ := range Types {
		typ := typ
		t.Run(string(typ), func(t *testing.T) {
			f := func(x mermaidish) bool {
				once := Normalize(string(x), typ)
				return Normalize(once, typ) == once
			}
			if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestNormalizeStartsWithHeader(t *testing.T) {
	for _, typ := range Types {
		header, _ := Header(typ)
		f := func(x mermaidish) bool {
			return strings.HasPrefix(Normalize(string(x), typ), header)
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 1000}); err != nil {
			t.Errorf("%s: %v", typ, err)
		}
	}
}

func TestUnknownTypeOnlyCleans(t *testing.T) {
	if got := Normalize(`a\nb`, Type("mindmap")); got != "a\nb" {
		t.Errorf("got %q", got)
	}
}

func TestExecute(t *testing.T) {
	p := New()
	args, err := p.Tools()[0].Schema.Decode(`{"code":"A-->B","type":"flowchart"}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	res, err := p.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: ToolName}, args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Output.Type != api.OutputDiagram || res.Output.Diagram != "flowchart TD\nA-->B" {
		t.Errorf("result = %+v", res.Output)
	}
	if res.ModelContent() != "flowchart TD\nA-->B" {
		t.Errorf("ModelContent = %q", res.ModelContent())
	}
}
