// Package tools exposes the registry edit pipeline as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/service"
	"github.com/cancer-registry-edits/pkg/codes"
)

// Tool names
const (
	ValidateRecordsTool    = "validate_records"
	AutoCorrectRecordsTool = "autocorrect_records"
	LookupCodeTool         = "lookup_code"
)

// ValidateInput holds the arguments of validate_records
type ValidateInput struct {
	Records     []map[string]any `json:"records" jsonschema:"records to check, each a flat object of field values"`
	AutoCorrect bool             `json:"autocorrect,omitempty" jsonschema:"repair near-miss codes before validating"`
}

// ValidateOutput is the structured result of validate_records
type ValidateOutput struct {
	ValidationID string           `json:"validation_id"`
	Input        int              `json:"input_records"`
	Retained     int              `json:"retained_records"`
	Invalid      int              `json:"invalid_records"`
	Corrections  int              `json:"corrections"`
	Records      []map[string]any `json:"records"`
}

// AutoCorrectInput holds the arguments of autocorrect_records
type AutoCorrectInput struct {
	Records   []map[string]any `json:"records" jsonschema:"records to repair, each a flat object of field values"`
	Threshold *float64         `json:"threshold,omitempty" jsonschema:"minimum match confidence between 0 and 1, the configured value when absent"`
}

// AutoCorrectOutput is the structured result of autocorrect_records
type AutoCorrectOutput struct {
	CorrectedData []map[string]any     `json:"corrected_data"`
	Corrections   domain.CorrectionLog `json:"corrections"`
}

// LookupInput holds the arguments of lookup_code
type LookupInput struct {
	Table string `json:"table" jsonschema:"one of topography, morphology, sex, behavior, grade"`
	Value string `json:"value" jsonschema:"code or description to look up"`
}

// LookupOutput is the structured result of lookup_code
type LookupOutput struct {
	Table       string `json:"table"`
	Found       bool   `json:"found"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Toolset binds the MCP tools to one pipeline and code registry
type Toolset struct {
	pipeline  *service.Pipeline
	registry  *codes.Registry
	threshold float64
	logger    *logrus.Logger
}

// NewToolset creates the tools. threshold is the auto-correction default.
func NewToolset(pipeline *service.Pipeline, registry *codes.Registry, threshold float64, logger *logrus.Logger) *Toolset {
	return &Toolset{
		pipeline:  pipeline,
		registry:  registry,
		threshold: threshold,
		logger:    logger,
	}
}

// Register adds every tool to server
func (t *Toolset) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ValidateRecordsTool,
		Description: "Run the individual item, data combination and site-morphology checks over a batch of records",
	}, t.validateRecords)
	mcp.AddTool(server, &mcp.Tool{
		Name:        AutoCorrectRecordsTool,
		Description: "Repair near-miss topography, histology, sex, behavior and grade values without validating",
	}, t.autoCorrectRecords)
	mcp.AddTool(server, &mcp.Tool{
		Name:        LookupCodeTool,
		Description: "Look up a code or a description in one of the code dictionaries",
	}, t.lookupCode)

	t.logger.WithField("tools", []string{ValidateRecordsTool, AutoCorrectRecordsTool, LookupCodeTool}).Debug("Registered MCP tools")
}

// NewServer creates an MCP server carrying the toolset
func NewServer(ts *Toolset, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "registry-edits",
		Version: version,
	}, nil)
	ts.Register(server)
	return server
}

func (t *Toolset) validateRecords(ctx context.Context, _ *mcp.CallToolRequest, in ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	records, err := decodeRecords(in.Records)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	jobID := uuid.New().String()
	out := ValidateOutput{ValidationID: jobID, Input: len(records)}

	if in.AutoCorrect {
		corrected, corrections, err := t.pipeline.AutoCorrect(ctx, jobID, records, t.threshold)
		if err != nil {
			return nil, ValidateOutput{}, err
		}
		records = corrected
		out.Corrections = corrections.Total()
	}

	report, err := t.pipeline.Execute(ctx, jobID, records)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	out.Retained = report.Retained
	out.Invalid = report.Invalid
	if out.Records, err = encodeRecords(report.Records); err != nil {
		return nil, ValidateOutput{}, err
	}

	t.logger.WithFields(logrus.Fields{
		"tool":          ValidateRecordsTool,
		"validation_id": jobID,
		"retained":      out.Retained,
		"invalid":       out.Invalid,
	}).Info("Tool call completed")
	return nil, out, nil
}

func (t *Toolset) autoCorrectRecords(ctx context.Context, _ *mcp.CallToolRequest, in AutoCorrectInput) (*mcp.CallToolResult, AutoCorrectOutput, error) {
	threshold := t.threshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, AutoCorrectOutput{}, domain.NewValidationError("threshold", "must be between 0 and 1", threshold)
	}

	records, err := decodeRecords(in.Records)
	if err != nil {
		return nil, AutoCorrectOutput{}, err
	}

	corrected, corrections, err := t.pipeline.AutoCorrect(ctx, uuid.New().String(), records, threshold)
	if err != nil {
		return nil, AutoCorrectOutput{}, err
	}

	data, err := encodeRecords(corrected)
	if err != nil {
		return nil, AutoCorrectOutput{}, err
	}

	t.logger.WithFields(logrus.Fields{
		"tool":        AutoCorrectRecordsTool,
		"records":     len(corrected),
		"corrections": corrections.Total(),
	}).Info("Tool call completed")
	return nil, AutoCorrectOutput{CorrectedData: data, Corrections: corrections}, nil
}

func (t *Toolset) lookupCode(_ context.Context, _ *mcp.CallToolRequest, in LookupInput) (*mcp.CallToolResult, LookupOutput, error) {
	dict, ok := t.registry.Table(in.Table)
	if !ok {
		return nil, LookupOutput{}, fmt.Errorf("unknown table %q, expected one of %s", in.Table, strings.Join(codes.TableNames, ", "))
	}

	out := LookupOutput{Table: in.Table}
	if desc, ok := dict.Lookup(in.Value); ok {
		out.Found, out.Code, out.Description = true, in.Value, desc
	} else if code, ok := dict.CodeFor(in.Value); ok {
		out.Found, out.Code, out.Description = true, code, in.Value
	}
	return nil, out, nil
}

// decodeRecords runs the arguments through the same scalar checks as the HTTP and CLI inputs
func decodeRecords(in []map[string]any) ([]*domain.Record, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("records", "at least one record is required", nil)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return domain.DecodeRecords(data)
}

func encodeRecords(records []*domain.Record) ([]map[string]any, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	out := []map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}
