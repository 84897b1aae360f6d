package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resume-search/internal/document"
	"resume-search/internal/llm"
)

// LLMFieldExtractor asks a chat-completion model to parse the resume
// into the field structure. The document is reduced to plain text first.
type LLMFieldExtractor struct {
	svc    *llm.Service
	parser document.TextExtractor
}

func NewLLMFieldExtractor(svc *llm.Service, parser document.TextExtractor) *LLMFieldExtractor {
	return &LLMFieldExtractor{svc: svc, parser: parser}
}

func (e *LLMFieldExtractor) Extract(_ context.Context, documentBytes []byte, filename string) (*Fields, error) {
	text, err := e.parser.Text(filename, documentBytes)
	if err != nil {
		return nil, fmt.Errorf("document text extraction: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert resume parser. Extract the following fields from the resume:
name, email, phone, location, education, experience, and skills.

Return ONLY valid JSON (no markdown, no explanation) with this exact structure:
{
  "name": "Jane Doe",
  "email": "jane.doe@example.com",
  "phone": "+1 555 0100",
  "location": "Berlin",
  "education": ["B.Tech in Computer Science, IIT Delhi"],
  "experience": ["Software Engineer at Infosys (2020-2022)"],
  "skills": ["Python", "Machine Learning", "SQL"]
}
Use empty strings or empty arrays for anything missing.

Resume:
"""
%s
"""`, text)

	raw, err := e.svc.Generate(prompt)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Name       string   `json:"name"`
		Email      string   `json:"email"`
		Phone      string   `json:"phone"`
		Location   string   `json:"location"`
		Education  []string `json:"education"`
		Experience []string `json:"experience"`
		Skills     []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON from LLM: %w", err)
	}

	return &Fields{
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Location:   payload.Location,
		Education:  strings.Join(payload.Education, ", "),
		Experience: strings.Join(payload.Experience, ", "),
		Skills:     DedupeSkills(payload.Skills),
	}, nil
}

// LLMSkillExtractor asks the model for the job-relevant key skills plus
// a category grouping.
type LLMSkillExtractor struct {
	svc    *llm.Service
	parser document.TextExtractor
}

func NewLLMSkillExtractor(svc *llm.Service, parser document.TextExtractor) *LLMSkillExtractor {
	return &LLMSkillExtractor{svc: svc, parser: parser}
}

func (e *LLMSkillExtractor) ExtractSkills(_ context.Context, documentBytes []byte, filename string) ([]string, map[string][]string, error) {
	text, err := e.parser.Text(filename, documentBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("document text extraction: %w", err)
	}

	prompt := fmt.Sprintf(`You are a resume parsing assistant.
You are given the text of a resume. Extract only the most job-relevant
individual skills, then group them.

Return ONLY valid JSON with this exact structure:
{
  "skills": ["Python", "Excel"],
  "categories": {"Languages": ["Python"], "Tools": ["Excel"]}
}
Every skill listed under a category must also appear in "skills".

Resume:
"""
%s
"""`, text)

	raw, err := e.svc.Generate(prompt)
	if err != nil {
		return nil, nil, err
	}

	var payload struct {
		Skills     []string            `json:"skills"`
		Categories map[string][]string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &payload); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON from LLM: %w", err)
	}

	skills := EnsureSubset(DedupeSkills(payload.Skills), payload.Categories)
	return skills, payload.Categories, nil
}

// CleanJSON strips the markdown code fences models wrap JSON in.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
