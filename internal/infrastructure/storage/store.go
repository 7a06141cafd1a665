package storage

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
)

var _ output.ContextStorePort = (*Store)(nil)

const maxHighlights = 10

var (
	bulletRe  = regexp.MustCompile(`^\s*[-*•]\s+`)
	metricRe  = regexp.MustCompile(`\d+\s*(%|\+|x\b|years?|percent)`)
	headingRe = regexp.MustCompile(`^[A-Z][A-Z &/]{2,39}:?$`)
)

// Store loads the user's profile and resume from local files. The
// profile is a flat YAML mapping; the resume is plain text from which
// highlights and sections are derived.
type Store struct {
	profilePath string
	resumePath  string
	logger      output.LoggerPort
}

func New(profilePath, resumePath string, logger output.LoggerPort) *Store {
	return &Store{profilePath: profilePath, resumePath: resumePath, logger: logger}
}

func (s *Store) LoadContext(ctx context.Context) (*entity.AgentContext, error) {
	profile, err := s.loadProfile()
	if err != nil {
		return nil, err
	}

	resume := entity.Resume{}
	if s.resumePath != "" {
		raw, err := os.ReadFile(s.resumePath)
		if err != nil {
			s.logger.Warn("No resume file, continuing without one",
				"path", s.resumePath, "error", err)
		} else {
			resume = deriveResume(string(raw))
		}
	}

	s.logger.Info("Context loaded",
		"profileKeys", len(profile),
		"highlights", len(resume.Highlights),
	)
	return &entity.AgentContext{Profile: profile, Resume: resume}, nil
}

func (s *Store) loadProfile() (entity.Profile, error) {
	data, err := os.ReadFile(s.profilePath)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	// scalar values of any YAML type are flattened to strings
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}

	profile := make(entity.Profile, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			profile[k] = v
		default:
			profile[k] = fmt.Sprint(v)
		}
	}
	return profile, nil
}

func deriveResume(raw string) entity.Resume {
	return entity.Resume{
		Raw:        raw,
		Highlights: deriveHighlights(raw),
		Sections:   deriveSections(raw),
	}
}

// deriveHighlights prefers bullet lines; when the resume has none it
// falls back to lines that carry a concrete metric.
func deriveHighlights(raw string) []string {
	var bullets, metrics []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(trimmed) > 200 {
			continue
		}
		if bulletRe.MatchString(line) {
			bullets = append(bullets, strings.TrimSpace(bulletRe.ReplaceAllString(line, "")))
		} else if metricRe.MatchString(trimmed) {
			metrics = append(metrics, trimmed)
		}
	}

	highlights := bullets
	if len(highlights) == 0 {
		highlights = metrics
	}
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}

// deriveSections splits the resume at heading-looking lines
// (short, upper-case, optionally colon-terminated).
func deriveSections(raw string) map[string]string {
	sections := make(map[string]string)
	current := ""
	var body []string

	flush := func() {
		if current != "" && len(body) > 0 {
			sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if headingRe.MatchString(trimmed) {
			flush()
			current = strings.TrimSuffix(trimmed, ":")
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}
