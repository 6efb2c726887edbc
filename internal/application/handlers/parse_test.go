package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

func TestParseRelationType(t *testing.T) {
	tests := []struct {
		input    string
		expected entities.RelationType
		wantErr  bool
	}{
		{input: "depends_on", expected: entities.RelationDependsOn},
		{input: " Feeds_Into ", expected: entities.RelationFeedsInto},
		{input: "redundant_with", expected: entities.RelationRedundantWith},
		{input: "hates", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rt, err := parseRelationType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, entities.ErrValidation)
				assert.Contains(t, err.Error(), "depends_on, supports")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rt)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := parseCategory("Natural_Disaster")
	require.NoError(t, err)
	assert.Equal(t, entities.CategoryNaturalDisaster, c)

	_, err = parseCategory("meteor")
	require.Error(t, err)

	c, err = parseOptionalCategory("")
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestParseOptionalEnums(t *testing.T) {
	r, err := parseRedundancy("")
	require.NoError(t, err)
	assert.Empty(t, r)

	r, err = parseRedundancy("FULL")
	require.NoError(t, err)
	assert.Equal(t, entities.RedundancyFull, r)

	_, err = parseRedundancy("triple")
	require.Error(t, err)

	s, err := parseStrength("")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = parseStrength("mighty")
	require.Error(t, err)
}

func TestParseConflictStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected services.ConflictStrategy
		wantErr  bool
	}{
		{input: "", expected: services.ConflictSkip},
		{input: "skip", expected: services.ConflictSkip},
		{input: "Overwrite", expected: services.ConflictOverwrite},
		{input: "merge", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := parseConflictStrategy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}
