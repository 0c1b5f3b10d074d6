package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-failure-risk-portal/internal/bootstrap"
	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/service"
)

func newTestServer(t *testing.T) (*Server, *bootstrap.App, *bytes.Buffer) {
	t.Helper()
	abs := func(name string) string {
		path, _ := filepath.Abs(filepath.Join("..", "artifacts", "testdata", name))
		return path
	}
	body := fmt.Sprintf("artifacts:\n  source: file\n  scaler_path: %s\n  classifier_path: %s\nlogging:\n  level: info\n",
		abs("scaler_standard.json"), abs("classifier_logistic.json"))
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	logs := &bytes.Buffer{}
	app, err := bootstrap.New(context.Background(), bootstrap.Options{ConfigFile: path, LogOutput: logs})
	require.NoError(t, err)

	server, err := NewServer(app)
	require.NoError(t, err)
	return server, app, logs
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	text, ok := r.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAssess_Outcomes(t *testing.T) {
	s, _, logs := newTestServer(t)

	tests := []struct {
		name      string
		arguments string
		risk      domain.RiskLevel
		text      string
	}{
		{"no arguments", ``, domain.RiskLow, "Low Risk of Heart Failure — Maintain a healthy lifestyle and regular checkups."},
		{"null arguments", `null`, domain.RiskLow, "Low Risk of Heart Failure — Maintain a healthy lifestyle and regular checkups."},
		{"empty object", `{}`, domain.RiskLow, "Low Risk of Heart Failure — Maintain a healthy lifestyle and regular checkups."},
		{
			"critical patient",
			`{"age":75,"anaemia":1,"creatinine_phosphokinase":582,"ejection_fraction":20,"high_blood_pressure":1,"platelets":265000,"serum_creatinine":2.7,"serum_sodium":130,"sex":1,"time":10}`,
			domain.RiskHigh,
			"High Risk of Heart Failure — Please consult a cardiologist immediately for detailed diagnosis.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.assess(context.Background(), json.RawMessage(tt.arguments))

			require.False(t, result.IsError)
			assert.Equal(t, tt.text, resultText(t, result))
			res, ok := result.Meta["result"].(assessResult)
			require.True(t, ok)
			assert.Equal(t, tt.risk, res.Risk)
			assert.Len(t, res.Features, domain.FeatureCount)
		})
	}

	assert.NotContains(t, logs.String(), "265000")
}

func TestAssess_InvalidArguments(t *testing.T) {
	s, _, _ := newTestServer(t)

	for name, arguments := range map[string]string{
		"malformed":        `{"age":`,
		"unknown field":    `{"cholesterol":200}`,
		"wrong type":       `{"age":"sixty"}`,
		"fractional int":   `{"age":60.5}`,
		"out of range":     `{"serum_creatinine":12}`,
		"flag outside 0/1": `{"smoking":5}`,
		"trailing data":    `{"age":60} junk`,
	} {
		t.Run(name, func(t *testing.T) {
			result := s.assess(context.Background(), json.RawMessage(arguments))

			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), "Invalid parameters")
			assert.NotContains(t, resultText(t, result), "Risk of Heart Failure")
		})
	}
}

type failingScaler struct{}

func (failingScaler) Transform(domain.FeatureVector) (domain.FeatureVector, error) {
	return domain.FeatureVector{}, errors.New("scaler exploded")
}

func TestAssess_TransformFailure(t *testing.T) {
	s, app, logs := newTestServer(t)
	inference, err := service.NewInferenceService(app.Logger, failingScaler{}, app.Artifacts.Classifier)
	require.NoError(t, err)
	s.inference = inference

	result := s.assess(context.Background(), json.RawMessage(`{}`))

	assert.True(t, result.IsError)
	assert.Equal(t, "Error: Risk could not be computed", resultText(t, result))
	assert.Contains(t, logs.String(), "Risk assessment failed")
}

func TestInputSchema(t *testing.T) {
	s, _, _ := newTestServer(t)

	schema, err := s.inputSchema()
	require.NoError(t, err)

	assert.Equal(t, "object", schema.Type)
	require.Len(t, schema.Properties, domain.FeatureCount)
	for _, name := range domain.FeatureNames() {
		assert.Contains(t, schema.Properties, name)
	}

	age := schema.Properties["age"]
	assert.Equal(t, "integer", age.Type)
	require.NotNil(t, age.Minimum)
	assert.Equal(t, 1.0, *age.Minimum)
	assert.Equal(t, 120.0, *age.Maximum)
	assert.Contains(t, age.Description, "default 60")

	assert.Equal(t, "number", schema.Properties["serum_creatinine"].Type)
	assert.Contains(t, schema.Properties["sex"].Description, "0 = Female, 1 = Male")
}

func connectClient(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "risk-test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })
	return clientSession
}

func TestAssessTool_OverClientSession(t *testing.T) {
	s, _, _ := newTestServer(t)
	session := connectClient(t, s)

	tests := []struct {
		name      string
		arguments map[string]any
		isError   bool
		risk      string
		text      string
	}{
		{
			name:      "defaults",
			arguments: map[string]any{},
			risk:      "low",
			text:      "Low Risk of Heart Failure",
		},
		{
			name: "critical patient",
			arguments: map[string]any{
				"age": 75, "anaemia": 1, "creatinine_phosphokinase": 582, "ejection_fraction": 20,
				"high_blood_pressure": 1, "platelets": 265000, "serum_creatinine": 2.7,
				"serum_sodium": 130, "sex": 1, "time": 10,
			},
			risk: "high",
			text: "High Risk of Heart Failure",
		},
		{
			name:      "sex outside 0/1",
			arguments: map[string]any{"sex": 2},
			isError:   true,
			text:      "Invalid parameters",
		},
		{
			name:      "unknown field",
			arguments: map[string]any{"cholesterol": 200},
			isError:   true,
			text:      "Invalid parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      AssessToolName,
				Arguments: tt.arguments,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.isError, result.IsError)
			assert.Contains(t, resultText(t, result), tt.text)
			if tt.isError {
				assert.NotContains(t, resultText(t, result), "Risk of Heart Failure")
				return
			}
			res, ok := result.Meta["result"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.risk, res["risk"])
		})
	}
}

func TestAssessTool_ListedWithSchema(t *testing.T) {
	s, _, _ := newTestServer(t)
	session := connectClient(t, s)

	listed, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)

	tool := listed.Tools[0]
	assert.Equal(t, AssessToolName, tool.Name)
	require.NotNil(t, tool.InputSchema)
	assert.Equal(t, "object", tool.InputSchema.Type)
	assert.Len(t, tool.InputSchema.Properties, domain.FeatureCount)
	require.NotNil(t, tool.InputSchema.Properties["sex"].Maximum)
	assert.Equal(t, 1.0, *tool.InputSchema.Properties["sex"].Maximum)
}

func TestRawArguments(t *testing.T) {
	raw, err := rawArguments(json.RawMessage(`{"age":70}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":70}`, string(raw))

	raw, err = rawArguments(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = rawArguments(map[string]any{"age": 70})
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":70}`, string(raw))

	_, err = rawArguments(func() {})
	assert.Error(t, err)
}
