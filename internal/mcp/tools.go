package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/form"
	"github.com/heart-failure-risk-portal/internal/service"
)

// AssessToolName is the name of the risk assessment tool
const AssessToolName = "assess_heart_failure_risk"

const assessToolDescription = "Predict heart failure risk from twelve clinical measurements. " +
	"Omitted measurements take the form's default value. Returns a high or low risk outcome with advice."

// registerTools registers tools with the MCP SDK
func (s *Server) registerTools() error {
	schema, err := s.inputSchema()
	if err != nil {
		return err
	}

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        AssessToolName,
		Description: assessToolDescription,
		InputSchema: schema,
	}, s.handleAssess)

	s.logger.WithField("tool_name", AssessToolName).Debug("Registered MCP tool")
	return nil
}

// inputSchema describes the tool arguments from the form's field specs
func (s *Server) inputSchema() (*jsonschema.Schema, error) {
	props := make(map[string]*jsonschema.Schema, domain.FeatureCount)
	for _, spec := range s.collector.Fields() {
		minimum, maximum := spec.Min, spec.Max
		prop := &jsonschema.Schema{
			Type:        "integer",
			Description: fmt.Sprintf("%s (default %s)", spec.Label, form.FormatValue(spec, spec.Default)),
			Minimum:     &minimum,
			Maximum:     &maximum,
		}
		if spec.Kind == domain.KindReal {
			prop.Type = "number"
		}
		if spec.Kind == domain.KindFlag && len(spec.Options) == 2 {
			prop.Description = fmt.Sprintf("%s: 0 = %s, 1 = %s (default %s)", spec.Label, spec.Options[0], spec.Options[1], form.FormatValue(spec, spec.Default))
		}
		props[spec.Name] = prop
	}
	if len(props) != domain.FeatureCount {
		return nil, fmt.Errorf("tool schema has %d properties, want %d", len(props), domain.FeatureCount)
	}
	return &jsonschema.Schema{Type: "object", Properties: props}, nil
}

// handleAssess handles the assess_heart_failure_risk tool invocation. The
// SDK hands raw tool handlers their arguments as json.RawMessage.
func (s *Server) handleAssess(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments, err := rawArguments(req.Params.Arguments)
	if err != nil {
		return createErrorResult("Invalid parameters", err), nil
	}
	return s.assess(ctx, arguments), nil
}

func rawArguments(arguments any) (json.RawMessage, error) {
	switch a := arguments.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return a, nil
	default:
		return json.Marshal(a)
	}
}

// assess runs one assessment from raw tool arguments. Failures become
// error results, never a risk outcome.
func (s *Server) assess(ctx context.Context, arguments json.RawMessage) *mcp.CallToolResult {
	s.logger.WithField("tool", AssessToolName).Info("Tool invoked")

	snapshot := s.collector.Defaults()
	if trimmed := bytes.TrimSpace(arguments); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := form.DecodeJSON(trimmed, &snapshot); err != nil {
			return createErrorResult("Invalid parameters", err)
		}
	}

	if err := s.collector.Check(snapshot); err != nil {
		return createErrorResult("Invalid parameters", err)
	}

	assessment, err := s.inference.Assess(ctx, snapshot)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"tool":  AssessToolName,
			"error": err.Error(),
		}).Error("Risk assessment failed")
		return createErrorResult("Risk could not be computed", nil)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: assessment.Outcome.Message()},
		},
		Meta: map[string]interface{}{
			"result": toolResult(assessment),
		},
	}
}

type assessResult struct {
	Risk     domain.RiskLevel   `json:"risk"`
	Label    domain.Label       `json:"label"`
	Headline string             `json:"headline"`
	Advice   string             `json:"advice"`
	Features map[string]float64 `json:"features"`
}

func toolResult(a *service.Assessment) assessResult {
	features := make(map[string]float64, domain.FeatureCount)
	for i, v := range a.Features {
		features[domain.Feature(i).String()] = v
	}
	return assessResult{
		Risk:     a.Outcome.Risk,
		Label:    a.Outcome.Label,
		Headline: a.Outcome.Headline,
		Advice:   a.Outcome.Advice,
		Features: features,
	}
}

// createErrorResult creates a standardized error result for tool calls
func createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
