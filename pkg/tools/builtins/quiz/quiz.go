// Package quiz provides the create_quiz tool. It validates a quiz the model
// composed and packages it for the quiz renderer.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/tools"
	"github.com/rhuss/sandchat/pkg/tools/registry"
)

// ToolName is the name the model uses to request a quiz.
const ToolName = "create_quiz"

// Types lists the accepted quiz kinds.
var Types = []api.QuizType{api.QuizMultipleChoice, api.QuizTrueFalse}

// trueFalseOptions are used when a true_false quiz omits its options.
var trueFalseOptions = []string{"True", "False"}

var _ registry.FunctionProvider = (*Provider)(nil)

// Provider is a FunctionProvider for create_quiz.
type Provider struct{}

// New creates a quiz Provider.
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string            { return "quiz" }
func (p *Provider) Routes() []registry.Route { return nil }
func (p *Provider) Close() error             { return nil }

// Tools returns the create_quiz declaration.
func (p *Provider) Tools() []tools.ToolSpec {
	enum := make([]string, len(Types))
	for i, t := range Types {
		enum[i] = string(t)
	}
	return []tools.ToolSpec{{
		Name:        ToolName,
		Description: "Create a quiz question for the user. The correct answer must be one of the options.",
		Schema: tools.Schema{Params: []tools.Param{
			{Name: "type", Type: tools.TypeEnum, Enum: enum, Required: true, Description: "Quiz type"},
			{Name: "question", Type: tools.TypeString, Required: true, Description: "The question text"},
			{Name: "options", Type: tools.TypeStringArray, Description: "Answer options; defaults to True/False for true_false"},
			{Name: "correct_answer", Type: tools.TypeString, Required: true, Description: "The correct option"},
		}},
	}}
}

// Execute validates and packages the quiz.
func (p *Provider) Execute(_ context.Context, call tools.ToolCall, args tools.Args) (*tools.ToolResult, error) {
	spec, err := Build(api.QuizType(args.String("type")), args.String("question"), args.Strings("options"), args.String("correct_answer"))
	if err != nil {
		return tools.ErrorResult(call, "Error: "+err.Error()), nil
	}
	return &tools.ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Output: api.FunctionOutput{Type: api.OutputQuiz, Quiz: spec},
	}, nil
}

// Build validates a quiz and returns its canonical form. The correct answer
// is matched against the options under Unicode case folding, ignoring
// surrounding space, and is replaced by the option's own text.
func Build(typ api.QuizType, question string, options []string, answer string) (*api.QuizSpec, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question must not be empty")
	}

	var opts []string
	switch typ {
	case api.QuizTrueFalse:
		if len(options) == 0 {
			options = trueFalseOptions
		}
		if len(options) != 2 {
			return nil, fmt.Errorf("true_false quizzes need exactly 2 options, got %d", len(options))
		}
	case api.QuizMultipleChoice:
		if len(options) < 2 {
			return nil, fmt.Errorf("multiple_choice quizzes need at least 2 options, got %d", len(options))
		}
	default:
		return nil, fmt.Errorf("unsupported quiz type %q", typ)
	}

	fold := cases.Fold()
	seen := make(map[string]bool, len(options))
	for i, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, fmt.Errorf("option %d is empty", i)
		}
		key := fold.String(o)
		if seen[key] {
			return nil, fmt.Errorf("duplicate option %q", o)
		}
		seen[key] = true
		opts = append(opts, o)
	}

	want := fold.String(strings.TrimSpace(answer))
	for _, o := range opts {
		if fold.String(o) == want {
			return &api.QuizSpec{
				Type:          typ,
				Question:      question,
				Options:       opts,
				CorrectAnswer: o,
			}, nil
		}
	}
	return nil, fmt.Errorf("correct answer %q is not one of the options", strings.TrimSpace(answer))
}
