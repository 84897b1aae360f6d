package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-search/internal/document"
)

const sampleResume = `Jane Doe
jane.doe@example.com
+1 555 123 4567
Location: Berlin

Experience
Software Engineer at Acme (2020-2023)
Built Go microservices

Education
B.Sc. Computer Science, TU Berlin

Skills: Go, PostgreSQL, Docker
`

func TestRuleBasedFieldExtractor(t *testing.T) {
	e := NewRuleBasedFieldExtractor(document.NewParser())

	fields, err := e.Extract(context.Background(), []byte(sampleResume), "resume.txt")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Equal(t, "jane.doe@example.com", fields.Email)
	assert.Equal(t, "+1 555 123 4567", fields.Phone)
	assert.Equal(t, "Berlin", fields.Location)
	assert.Contains(t, fields.Experience, "Software Engineer at Acme")
	assert.Contains(t, fields.Education, "TU Berlin")
	assert.Contains(t, fields.Skills, "Go")
	assert.Contains(t, fields.Skills, "PostgreSQL")
	assert.Contains(t, fields.Skills, "Docker")
}

func TestRuleBasedFieldExtractorWordBoundaries(t *testing.T) {
	e := NewRuleBasedFieldExtractor(document.NewParser())

	// "Google" must not count as a "Go" skill.
	fields, err := e.Extract(context.Background(), []byte("Worked at Google on search."), "resume.txt")
	require.NoError(t, err)
	assert.NotContains(t, fields.Skills, "Go")
}

func TestRuleBasedSkillExtractorCategories(t *testing.T) {
	e := NewRuleBasedSkillExtractor(document.NewParser())

	skills, categories, err := e.ExtractSkills(context.Background(), []byte(sampleResume), "resume.txt")
	require.NoError(t, err)

	assert.Contains(t, skills, "Go")
	assert.Contains(t, categories["Languages"], "Go")
	assert.Contains(t, categories["Data"], "PostgreSQL")
	assert.Contains(t, categories["Infra"], "Docker")

	// Category members are always a subset of the flat list.
	flat := make(map[string]bool)
	for _, s := range skills {
		flat[s] = true
	}
	for category, members := range categories {
		for _, m := range members {
			assert.True(t, flat[m], "category %s member %s missing from flat skills", category, m)
		}
	}
}

func TestRuleBasedExtractorPropagatesParserError(t *testing.T) {
	e := NewRuleBasedFieldExtractor(document.NewParser())

	_, err := e.Extract(context.Background(), []byte("data"), "resume.xyz")
	assert.Error(t, err)
}

func TestDedupeSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, DedupeSkills([]string{"Go", "SQL", "Go", ""}))
	assert.Empty(t, DedupeSkills(nil))
}

func TestEnsureSubset(t *testing.T) {
	skills := EnsureSubset([]string{"Go"}, map[string][]string{"Data": {"SQL", "Go"}})
	assert.Equal(t, []string{"Go", "SQL"}, skills)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON(`{"a":1}`))
}
