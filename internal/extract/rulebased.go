package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"resume-search/internal/document"
)

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)

	reExperienceHeading = regexp.MustCompile(`(?i)^(work\s+)?experience\b|^employment\b`)
	reEducationHeading  = regexp.MustCompile(`(?i)^education\b|^academic\b`)
	reSectionHeading    = regexp.MustCompile(`(?i)^(work\s+)?experience\b|^employment\b|^education\b|^academic\b|^skills\b|^projects\b|^certifications\b|^summary\b|^languages\b`)
)

// skillKeywords is the dictionary the rule-based extractor scans for.
var skillKeywords = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript", "C++", "C#",
	"Ruby", "PHP", "Rust", "Kotlin", "Swift", "Scala", "SQL",
	"React", "Vue", "Angular", "Node.js", "Django", "Flask", "Spring",
	"Docker", "Kubernetes", "Terraform", "Ansible", "Jenkins", "Git", "CI/CD",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka", "RabbitMQ",
	"AWS", "Azure", "GCP", "Linux",
	"GraphQL", "REST", "gRPC", "Microservices",
	"Machine Learning", "Deep Learning", "NLP", "Data Science", "DevOps",
	"Excel", "Tableau", "Power BI",
}

// skillCategories groups dictionary skills for the category mapping.
var skillCategories = map[string][]string{
	"Languages":  {"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Ruby", "PHP", "Rust", "Kotlin", "Swift", "Scala", "SQL"},
	"Frameworks": {"React", "Vue", "Angular", "Node.js", "Django", "Flask", "Spring"},
	"Infra":      {"Docker", "Kubernetes", "Terraform", "Ansible", "Jenkins", "Git", "CI/CD", "AWS", "Azure", "GCP", "Linux"},
	"Data":       {"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka", "RabbitMQ", "Machine Learning", "Deep Learning", "NLP", "Data Science", "Excel", "Tableau", "Power BI"},
	"APIs":       {"GraphQL", "REST", "gRPC", "Microservices"},
}

// RuleBasedFieldExtractor pulls fields out of the document text with
// regexes and line heuristics. Deterministic, no external calls; the
// default adapter and the one the tests run against.
type RuleBasedFieldExtractor struct {
	parser document.TextExtractor
}

func NewRuleBasedFieldExtractor(parser document.TextExtractor) *RuleBasedFieldExtractor {
	return &RuleBasedFieldExtractor{parser: parser}
}

func (e *RuleBasedFieldExtractor) Extract(_ context.Context, documentBytes []byte, filename string) (*Fields, error) {
	text, err := e.parser.Text(filename, documentBytes)
	if err != nil {
		return nil, fmt.Errorf("document text extraction: %w", err)
	}

	fields := &Fields{
		Email:      reEmail.FindString(text),
		Phone:      strings.TrimSpace(rePhone.FindString(text)),
		Name:       guessName(text),
		Location:   guessLocation(text),
		Experience: sectionText(text, reExperienceHeading),
		Education:  sectionText(text, reEducationHeading),
		Skills:     DedupeSkills(scanSkills(text)),
	}
	return fields, nil
}

// RuleBasedSkillExtractor scans the document text against the skill
// dictionary and groups hits by category.
type RuleBasedSkillExtractor struct {
	parser document.TextExtractor
}

func NewRuleBasedSkillExtractor(parser document.TextExtractor) *RuleBasedSkillExtractor {
	return &RuleBasedSkillExtractor{parser: parser}
}

func (e *RuleBasedSkillExtractor) ExtractSkills(_ context.Context, documentBytes []byte, filename string) ([]string, map[string][]string, error) {
	text, err := e.parser.Text(filename, documentBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("document text extraction: %w", err)
	}

	skills := DedupeSkills(scanSkills(text))

	categories := make(map[string][]string)
	for category, members := range skillCategories {
		for _, m := range members {
			if containsSkill(skills, m) {
				categories[category] = append(categories[category], m)
			}
		}
	}

	skills = EnsureSubset(skills, categories)
	return skills, categories, nil
}

func containsSkill(skills []string, s string) bool {
	for _, have := range skills {
		if have == s {
			return true
		}
	}
	return false
}

// scanSkills finds dictionary skills mentioned anywhere in the text, plus
// anything listed on an explicit "Skills:" line.
func scanSkills(text string) []string {
	textLower := strings.ToLower(text)
	var skills []string
	for _, skill := range skillKeywords {
		if containsWord(textLower, strings.ToLower(skill)) {
			skills = append(skills, skill)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "skills:") {
			for _, s := range strings.Split(trimmed[len("skills:"):], ",") {
				if s = strings.TrimSpace(s); s != "" {
					skills = append(skills, s)
				}
			}
		}
	}
	return skills
}

// containsWord matches on rough word boundaries so "go" does not fire on
// "google". Skills with punctuation ("node.js", "c++") fall back to a
// plain substring match.
func containsWord(haystack, needle string) bool {
	if strings.ContainsAny(needle, ".+#/ ") {
		return strings.Contains(haystack, needle)
	}
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isAlnum(haystack[start-1])
		afterOK := end == len(haystack) || !isAlnum(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// guessName takes the first short non-contact line of the document.
func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.ContainsAny(trimmed, "@0123456789") {
			return ""
		}
		words := strings.Fields(trimmed)
		if len(words) >= 1 && len(words) <= 5 && len(trimmed) <= 60 {
			return trimmed
		}
		return ""
	}
	return ""
}

func guessLocation(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		for _, prefix := range []string{"location:", "address:", "based in:"} {
			if strings.HasPrefix(lower, prefix) {
				return strings.TrimSpace(trimmed[len(prefix):])
			}
		}
	}
	return ""
}

// sectionText collects the lines between a heading matching the pattern
// and the next section heading.
func sectionText(text string, heading *regexp.Regexp) string {
	lines := strings.Split(text, "\n")
	var collected []string
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inSection {
			if reSectionHeading.MatchString(trimmed) {
				break
			}
			if trimmed != "" {
				collected = append(collected, trimmed)
			}
			continue
		}
		if heading.MatchString(trimmed) {
			inSection = true
		}
	}
	return strings.Join(collected, " ")
}
