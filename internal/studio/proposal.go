package studio

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Proposal is the JSON envelope a review surface submits for application.
type Proposal struct {
	ID        string `json:"id"`
	Author    string `json:"author,omitempty"`
	Title     string `json:"title,omitempty"`
	Diff      string `json:"diff"`
	CreatedAt string `json:"createdAt,omitempty"`
}

const proposalSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "diff"],
  "additionalProperties": false,
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "author": {"type": "string"},
    "title": {"type": "string"},
    "diff": {"type": "string", "minLength": 1},
    "createdAt": {"type": "string"}
  }
}`

var (
	proposalLoader     gojsonschema.JSONLoader
	proposalLoaderOnce sync.Once
)

// ValidationError aggregates the schema issues found in a proposal payload.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "proposal failed validation"
	}
	return strings.Join(e.Issues, "; ")
}

// ParseProposal decodes and schema-validates a proposal payload. Metadata
// fields are sanitized before the proposal is returned.
func ParseProposal(raw string) (*Proposal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ValidationError{Issues: []string{"proposal payload is empty"}}
	}

	proposalLoaderOnce.Do(func() {
		proposalLoader = gojsonschema.NewStringLoader(proposalSchema)
	})
	result, err := gojsonschema.Validate(proposalLoader, gojsonschema.NewStringLoader(trimmed))
	if err != nil {
		return nil, &ValidationError{Issues: []string{fmt.Sprintf("payload is not valid JSON: %v", err)}}
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}
		return nil, &ValidationError{Issues: issues}
	}

	var proposal Proposal
	if err := json.Unmarshal([]byte(trimmed), &proposal); err != nil {
		return nil, &ValidationError{Issues: []string{err.Error()}}
	}
	proposal.Title = sanitizeText(proposal.Title)
	proposal.Author = sanitizeText(proposal.Author)
	return &proposal, nil
}
