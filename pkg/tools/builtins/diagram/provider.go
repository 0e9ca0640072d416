package diagram

import (
	"context"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/tools"
	"github.com/rhuss/sandchat/pkg/tools/registry"
)

// ToolName is the name the model uses to request a diagram.
const ToolName = "create_diagram"

var _ registry.FunctionProvider = (*Provider)(nil)

// Provider is a FunctionProvider for create_diagram.
type Provider struct{}

// New creates a diagram Provider.
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string            { return "diagram" }
func (p *Provider) Routes() []registry.Route { return nil }
func (p *Provider) Close() error             { return nil }

// Tools returns the create_diagram declaration.
func (p *Provider) Tools() []tools.ToolSpec {
	enum := make([]string, len(Types))
	for i, t := range Types {
		enum[i] = string(t)
	}
	return []tools.ToolSpec{{
		Name:        ToolName,
		Description: "Create a Mermaid diagram. Provide the diagram body; the header line for the type is added automatically.",
		Schema: tools.Schema{Params: []tools.Param{
			{Name: "code", Type: tools.TypeString, Required: true, Description: "Mermaid diagram source"},
			{Name: "type", Type: tools.TypeEnum, Enum: enum, Required: true, Description: "Diagram type"},
		}},
	}}
}

// Execute normalizes the diagram text.
func (p *Provider) Execute(_ context.Context, call tools.ToolCall, args tools.Args) (*tools.ToolResult, error) {
	return &tools.ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Output: api.FunctionOutput{
			Type:    api.OutputDiagram,
			Diagram: Normalize(args.String("code"), Type(args.String("type"))),
		},
	}, nil
}
