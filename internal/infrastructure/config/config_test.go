package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/simulation"
)

func TestSanitizeOrgName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple lowercase", input: "acme", expected: "acme"},
		{name: "uppercase converted", input: "AcmeBank", expected: "acmebank"},
		{name: "spaces to underscores", input: "acme bank", expected: "acme_bank"},
		{name: "hyphens to underscores", input: "acme-bank", expected: "acme_bank"},
		{name: "special characters removed", input: "acme@bank!", expected: "acmebank"},
		{name: "consecutive underscores collapsed", input: "acme--bank", expected: "acme_bank"},
		{name: "leading trailing underscores trimmed", input: "-acme-", expected: "acme"},
		{name: "empty string returns default", input: "", expected: "default"},
		{name: "only special chars returns default", input: "!!!", expected: "default"},
		{name: "complex mixed input", input: "Acme Bank (EU) 2", expected: "acme_bank_eu_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeOrgName(tt.input))
		})
	}
}

func TestGenerateCollectionName(t *testing.T) {
	assert.Equal(t, "resil_acme_bank", GenerateCollectionName("Acme Bank"))
	assert.Equal(t, "resil_default", GenerateCollectionName(""))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, []int{30, 90}, cfg.Forecast.Horizons)
	assert.Equal(t, simulation.DefaultConfig(), cfg.Simulation)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestParse(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("RESIL_LOG_LEVEL", "debug")

	cfg, err := Parse([]byte(`
simulation:
  multipliers:
    high: 0.5
  strict: true
llm:
  api_key: sk-file
log:
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Simulation.Multipliers.For(entities.SeverityHigh))
	assert.Equal(t, 1.0, cfg.Simulation.Multipliers.For(entities.SeverityCritical), "unlisted severities keep defaults")
	assert.True(t, cfg.Simulation.Strict)
	assert.Equal(t, simulation.DefaultMaxVisited, cfg.Simulation.MaxVisited)
	assert.Equal(t, "sk-file", cfg.LLM.APIKey, "file value wins over env")
	assert.Equal(t, "sk-env", cfg.Embedder.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("simulation:\n  multipliers:\n    severe: 2\n"))
	require.Error(t, err)
}

func TestParse_InvalidSimulation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "decay above one", yaml: "simulation:\n  decay_probability: 1.5\n", field: "decay_probability"},
		{name: "negative decay", yaml: "simulation:\n  decay_probability: -0.2\n", field: "decay_probability"},
		{name: "NaN decay", yaml: "simulation:\n  decay_probability: .nan\n", field: "decay_probability"},
		{name: "multiplier above one", yaml: "simulation:\n  multipliers:\n    low: 3\n", field: "multipliers.low"},
		{name: "negative multiplier", yaml: "simulation:\n  multipliers:\n    high: -1\n", field: "multipliers.high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, entities.ErrValidation)
			var verr *entities.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParse_ZeroDecayAllowed(t *testing.T) {
	cfg, err := Parse([]byte("simulation:\n  decay_probability: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Simulation.DecayProbability)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")

	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))
	assert.Error(t, WriteDefault(dir), "refuses to overwrite")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, simulation.DefaultConfig(), cfg.Simulation)
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Server.Addr = "127.0.0.1:9000"
	cfg.Simulation.Multipliers[entities.SeverityLow] = 0.1

	require.NoError(t, Write(dir, cfg))
	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", loaded.Server.Addr)
	assert.Equal(t, 0.1, loaded.Simulation.Multipliers.For(entities.SeverityLow))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/home/user/project/.resil", ConfigDir("/home/user/project"))
	assert.Equal(t, "/home/user/project/.resil/config.yaml", ConfigFilePath("/home/user/project"))
	assert.Equal(t, "/home/user/project/.resil/orgs.yaml", OrgsFilePath("/home/user/project"))
	assert.Equal(t, "/p/.resil/orgs/acme_bank/resil.db", SQLitePathForOrg("/p", "Acme Bank"))
}

func TestOrgsConfig(t *testing.T) {
	dir := t.TempDir()

	orgs, err := LoadOrgs(dir)
	require.NoError(t, err)
	assert.Empty(t, orgs.Orgs)
	assert.False(t, OrgsExists(dir))

	_, err = orgs.Get("acme")
	assert.ErrorIs(t, err, ErrNoOrgs)

	orgs.Add("acme", OrgEntry{Collection: GenerateCollectionName("acme"), Description: "retail bank"})
	orgs.Add("beta", OrgEntry{Collection: GenerateCollectionName("beta")})
	require.NoError(t, orgs.Save(dir))
	assert.True(t, OrgsExists(dir))

	info, err := os.Stat(filepath.Join(dir, DefaultConfigDir, DefaultOrgsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := LoadOrgs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "beta"}, reloaded.Names())

	collection, err := reloaded.GetCollection("acme")
	require.NoError(t, err)
	assert.Equal(t, "resil_acme", collection)

	_, err = reloaded.Get("gamma")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: acme, beta")

	reloaded.Remove("acme")
	assert.False(t, reloaded.Exists("acme"))
}
