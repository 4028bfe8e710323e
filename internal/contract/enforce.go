// Package contract turns raw model output into a contract-valid StructuredOutput:
// payload extraction, schema validation, normalization and the final
// cross-reference gate.
package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/normalize"
	"github.com/ppiankov/briefguard/internal/validate"
)

// Repairs is the soft repair log produced by normalization
type Repairs = normalize.Repairs

// IssueError is a structural failure. Error() is the JSON array of issues, the form
// the generation retry loop feeds back to the model.
type IssueError struct {
	Issues []string
}

func (e *IssueError) Error() string {
	data, err := json.Marshal(e.Issues)
	if err != nil {
		return strings.Join(e.Issues, "; ")
	}
	return string(data)
}

// Enforcer validates and normalizes raw output. It is safe for concurrent use.
type Enforcer struct {
	schema *validate.Schema
}

// NewEnforcer creates an enforcer with its own schema validator
func NewEnforcer() *Enforcer {
	return &Enforcer{schema: validate.NewSchema()}
}

// Enforce parses raw, validates it against the schema, normalizes it within limits
// and re-checks the result. It returns the enforced output and the repair log, or
// an *IssueError listing every violation.
func (e *Enforcer) Enforce(raw string, limits model.Limits) (*model.StructuredOutput, *Repairs, error) {
	if limits.RequiredCount <= 0 {
		return nil, nil, fmt.Errorf("enforce: requiredCount must be positive, got %d", limits.RequiredCount)
	}
	if limits.MaxArticleIndex <= 0 {
		return nil, nil, fmt.Errorf("enforce: maxArticleIndex must be positive, got %d", limits.MaxArticleIndex)
	}

	payload := ExtractPayload(raw)
	if payload == "" {
		return nil, nil, &IssueError{Issues: []string{"$: no JSON object found in output"}}
	}

	out, issues := e.schema.Check([]byte(payload))
	if len(issues) > 0 {
		return nil, nil, &IssueError{Issues: issues}
	}

	normalized, repairs := normalize.Normalize(out, limits)

	// Normalization should always satisfy the gate; anything left is a normalizer bug
	if issues := validate.CrossReference(normalized, limits); len(issues) > 0 {
		return nil, repairs, &IssueError{Issues: issues}
	}

	return normalized, repairs, nil
}

var defaultEnforcer = NewEnforcer()

// Enforce runs the shared enforcer
func Enforce(raw string, limits model.Limits) (*model.StructuredOutput, *Repairs, error) {
	return defaultEnforcer.Enforce(raw, limits)
}
