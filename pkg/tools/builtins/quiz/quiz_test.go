package quiz

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/tools"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		typ         api.QuizType
		question    string
		options     []string
		answer      string
		wantOptions []string
		wantAnswer  string
		wantErr     string
	}{
		{
			name:        "multiple choice",
			typ:         api.QuizMultipleChoice,
			question:    "2+2?",
			options:     []string{"3", " 4 ", "5"},
			answer:      "4",
			wantOptions: []string{"3", "4", "5"},
			wantAnswer:  "4",
		},
		{
			name:        "answer canonicalized",
			typ:         api.QuizMultipleChoice,
			question:    "Capital of France?",
			options:     []string{"Paris", "Rome"},
			answer:      "  paris",
			wantOptions: []string{"Paris", "Rome"},
			wantAnswer:  "Paris",
		},
		{
			name:        "answer folded beyond ASCII",
			typ:         api.QuizMultipleChoice,
			question:    "Which pastry is long?",
			options:     []string{"Éclair", "Croissant"},
			answer:      "ÉCLAIR",
			wantOptions: []string{"Éclair", "Croissant"},
			wantAnswer:  "Éclair",
		},
		{
			name:        "true false defaults",
			typ:         api.QuizTrueFalse,
			question:    "The sky is blue.",
			answer:      "true",
			wantOptions: []string{"True", "False"},
			wantAnswer:  "True",
		},
		{name: "blank question", typ: api.QuizTrueFalse, question: "  ", answer: "True", wantErr: "question"},
		{name: "unknown type", typ: "essay", question: "q", answer: "a", wantErr: "unsupported"},
		{name: "too few options", typ: api.QuizMultipleChoice, question: "q", options: []string{"a"}, answer: "a", wantErr: "at least 2"},
		{name: "true false with three", typ: api.QuizTrueFalse, question: "q", options: []string{"a", "b", "c"}, answer: "a", wantErr: "exactly 2"},
		{name: "empty option", typ: api.QuizMultipleChoice, question: "q", options: []string{"a", " "}, answer: "a", wantErr: "empty"},
		{name: "duplicate option", typ: api.QuizMultipleChoice, question: "q", options: []string{"A", "a"}, answer: "a", wantErr: "duplicate"},
		{name: "answer not an option", typ: api.QuizMultipleChoice, question: "q", options: []string{"a", "b"}, answer: "c", wantErr: "not one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Build(tt.typ, tt.question, tt.options, tt.answer)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !reflect.DeepEqual(spec.Options, tt.wantOptions) {
				t.Errorf("Options = %v, want %v", spec.Options, tt.wantOptions)
			}
			if spec.CorrectAnswer != tt.wantAnswer {
				t.Errorf("CorrectAnswer = %q, want %q", spec.CorrectAnswer, tt.wantAnswer)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	p := New()
	schema := p.Tools()[0].Schema

	args, err := schema.Decode(`{"type":"multiple_choice","question":"Pick b","options":["a","b"],"correct_answer":"B"}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	res, err := p.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: ToolName}, args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.IsError || res.Output.Type != api.OutputQuiz || res.Output.Quiz == nil {
		t.Fatalf("result = %+v", res)
	}

	var fed api.QuizSpec
	if err := json.Unmarshal([]byte(res.ModelContent()), &fed); err != nil {
		t.Fatalf("model content is not JSON: %v", err)
	}
	if fed.CorrectAnswer != "b" {
		t.Errorf("CorrectAnswer = %q, want b", fed.CorrectAnswer)
	}
}

func TestExecuteInvalidQuiz(t *testing.T) {
	p := New()
	args, err := p.Tools()[0].Schema.Decode(`{"type":"true_false","question":"q","correct_answer":"maybe"}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	res, _ := p.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: ToolName}, args)
	if !res.IsError || !strings.HasPrefix(res.ModelContent(), "Error: ") {
		t.Errorf("result = %+v", res)
	}
}
