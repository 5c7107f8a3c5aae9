// Package gemini extracts structured candidate data from resume documents
// using the Google Gemini API.
package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nicoalimin/talentscan/extract"
)

const defaultModel = "gemini-2.5-flash-lite"

//go:embed prompt.md
var promptTemplate string

// Extractor sends resume documents to Gemini and parses its structured JSON
// responses.
type Extractor struct {
	client    *genai.Client
	modelName string
}

var _ extract.Extractor = (*Extractor)(nil)

// NewExtractor creates a new Extractor configured for the Gemini API backend.
func NewExtractor(ctx context.Context, apiKey, model string) (*Extractor, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Extractor{client: client, modelName: model}, nil
}

// Extract implements the extract.Extractor interface. The document is sent to
// the model as inline data, so PDFs are read by the model directly without a
// separate text extraction step.
func (e *Extractor) Extract(ctx context.Context, doc *extract.Document) (*extract.CandidateProfile, error) {
	if e == nil || e.client == nil {
		return nil, errors.New("gemini extractor is not initialized")
	}
	if doc == nil || len(doc.Data) == 0 {
		return nil, errors.New("document must not be empty")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: promptTemplate},
			{InlineData: &genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := collectText(resp)
	if raw == "" {
		return nil, errors.New("gemini api returned empty response")
	}

	return parseProfile(raw)
}

// Model returns the name of the model used for extraction.
func (e *Extractor) Model() string {
	if e == nil {
		return ""
	}
	return e.modelName
}

func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func parseProfile(raw string) (*extract.CandidateProfile, error) {
	cleaned := extractJSON(raw)

	var profile extract.CandidateProfile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if strings.TrimSpace(profile.Name) == "" {
		return nil, errors.New("gemini response is missing the candidate name")
	}

	return &profile, nil
}

// extractJSON strips Markdown code fences the model sometimes wraps its JSON
// output in, despite the response MIME type.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
