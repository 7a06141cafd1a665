package openrouter

import (
	"context"
	"errors"
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

func TestEnsureEngine_MissingAPIKey(t *testing.T) {
	a := New(Config{Model: "some-model"}, nopLogger{})

	_, err := a.ensureEngine()
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrEngineUnavailable))
	assert.Equal(t, engineCold, a.state)
}

func TestEnsureEngine_MissingModel(t *testing.T) {
	a := New(Config{APIKey: "sk-test"}, nopLogger{})

	_, err := a.ensureEngine()
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrEngineUnavailable))
	assert.Equal(t, engineCold, a.state)
}

func TestEnsureEngine_WarmSingleton(t *testing.T) {
	a := New(DefaultConfig("sk-test", "some-model"), nopLogger{})

	first, err := a.ensureEngine()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, engineReady, a.state)

	second, err := a.ensureEngine()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRunPrompt_UnavailableEngine(t *testing.T) {
	a := New(Config{}, nopLogger{})

	_, err := a.RunPrompt(context.Background(), "system", "user", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrEngineUnavailable))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("key", "model")
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.BaseURL)
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, "model", cfg.Model)
}
