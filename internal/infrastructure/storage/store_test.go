package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formpilot/internal/application/port/output"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                          {}
func (nopLogger) Info(string, ...any)                           {}
func (nopLogger) Warn(string, ...any)                           {}
func (nopLogger) Error(string, ...any)                          {}
func (l nopLogger) WithField(string, any) output.LoggerPort     { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                  { return nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadContext_ProfileAndResume(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.yaml", `
firstName: Ada
email: ada@example.com
yearsExperience: 12
remote: true
`)
	resume := writeFile(t, dir, "resume.txt", `EXPERIENCE
- Designed the first general-purpose program
- Cut computation time by 40%

EDUCATION
Self-taught, with private tutors.
`)

	store := New(profile, resume, nopLogger{})
	agentCtx, err := store.LoadContext(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ada", agentCtx.Profile.Get("firstName"))
	assert.Equal(t, "ada@example.com", agentCtx.Profile.Get("email"))
	// non-string scalars are flattened
	assert.Equal(t, "12", agentCtx.Profile.Get("yearsExperience"))
	assert.Equal(t, "true", agentCtx.Profile.Get("remote"))

	require.Len(t, agentCtx.Resume.Highlights, 2)
	assert.Equal(t, "Designed the first general-purpose program", agentCtx.Resume.Highlights[0])

	assert.Contains(t, agentCtx.Resume.Sections, "EXPERIENCE")
	assert.Contains(t, agentCtx.Resume.Sections, "EDUCATION")
	assert.Equal(t, "Self-taught, with private tutors.", agentCtx.Resume.Sections["EDUCATION"])
}

func TestLoadContext_MissingResumeIsFine(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.yaml", "email: a@b.c\n")

	store := New(profile, filepath.Join(dir, "nope.txt"), nopLogger{})
	agentCtx, err := store.LoadContext(context.Background())
	require.NoError(t, err)
	assert.Empty(t, agentCtx.Resume.Highlights)
}

func TestLoadContext_MissingProfileFails(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope.yaml"), "", nopLogger{})
	_, err := store.LoadContext(context.Background())
	assert.Error(t, err)
}

func TestLoadContext_MalformedProfileFails(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.yaml", "firstName: [unclosed\n")

	store := New(profile, "", nopLogger{})
	_, err := store.LoadContext(context.Background())
	assert.Error(t, err)
}

func TestDeriveHighlights_MetricFallback(t *testing.T) {
	raw := `Senior engineer with a decade of experience.
Grew revenue 30% year over year.
Loves distributed systems.
`
	highlights := deriveHighlights(raw)
	require.Len(t, highlights, 1)
	assert.Equal(t, "Grew revenue 30% year over year.", highlights[0])
}

func TestDeriveHighlights_Capped(t *testing.T) {
	var raw string
	for i := 0; i < 15; i++ {
		raw += "- bullet line\n"
	}
	assert.Len(t, deriveHighlights(raw), maxHighlights)
}
