// Package chart provides the create_chart tool, which turns a chart type,
// labels and data series into the definition a chart renderer consumes.
package chart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/tools"
	"github.com/rhuss/sandchat/pkg/tools/registry"
)

// ToolName is the name the model uses to request a chart.
const ToolName = "create_chart"

// Types lists the accepted chart kinds in declaration order.
var Types = []api.ChartType{
	api.ChartBar,
	api.ChartLine,
	api.ChartPie,
	api.ChartDoughnut,
	api.ChartRadar,
	api.ChartPolarArea,
}

var _ registry.FunctionProvider = (*Provider)(nil)

// Provider is a FunctionProvider for create_chart.
type Provider struct{}

// New creates a chart Provider.
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string            { return "chart" }
func (p *Provider) Routes() []registry.Route { return nil }
func (p *Provider) Close() error             { return nil }

// Tools returns the create_chart declaration.
func (p *Provider) Tools() []tools.ToolSpec {
	enum := make([]string, len(Types))
	for i, t := range Types {
		enum[i] = string(t)
	}
	return []tools.ToolSpec{{
		Name:        ToolName,
		Description: "Create a chart to visualize numeric data. Labels and data must have the same length.",
		Schema: tools.Schema{Params: []tools.Param{
			{Name: "type", Type: tools.TypeEnum, Enum: enum, Required: true, Description: "Chart type"},
			{Name: "title", Type: tools.TypeString, Description: "Chart title"},
			{Name: "labels", Type: tools.TypeStringArray, Required: true, Description: "Category labels"},
			{Name: "data", Type: tools.TypeNumberArray, Required: true, Description: "One value per label"},
		}},
	}}
}

// Execute builds the chart definition.
func (p *Provider) Execute(_ context.Context, call tools.ToolCall, args tools.Args) (*tools.ToolResult, error) {
	spec, err := Build(api.ChartType(args.String("type")), args.String("title"), args.Strings("labels"), args.Numbers("data"))
	if err != nil {
		return tools.ErrorResult(call, "Error: "+err.Error()), nil
	}
	return &tools.ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Output: api.FunctionOutput{Type: api.OutputChart, Chart: spec},
	}, nil
}

// Build validates the inputs and returns a chart definition.
func Build(typ api.ChartType, title string, labels []string, data []float64) (*api.ChartSpec, error) {
	known := false
	for _, t := range Types {
		if t == typ {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unsupported chart type %q", typ)
	}
	if len(labels) == 0 {
		return nil, errors.New("labels must not be empty")
	}
	if len(labels) != len(data) {
		return nil, fmt.Errorf("labels has %d entries but data has %d", len(labels), len(data))
	}

	if proportional(typ) {
		for i, v := range data {
			if v < 0 {
				return nil, fmt.Errorf("%s charts cannot show negative value %g for %q", typ, v, labels[i])
			}
		}
	}

	cleaned := make([]string, len(labels))
	for i, l := range labels {
		cleaned[i] = strings.TrimSpace(l)
	}

	return &api.ChartSpec{
		Type:   typ,
		Title:  strings.TrimSpace(title),
		Labels: cleaned,
		Data:   append([]float64(nil), data...),
	}, nil
}

// proportional reports whether typ draws each value as a share of a whole.
func proportional(typ api.ChartType) bool {
	switch typ {
	case api.ChartPie, api.ChartDoughnut, api.ChartPolarArea:
		return true
	}
	return false
}
