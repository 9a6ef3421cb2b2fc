package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivalpulse/pkg/contracts/domain"
)

func tableWithHeaders(t *testing.T, headers []string) *RawTable {
	t.Helper()
	buf := buildWorkbook(t, headers, nil)
	table, err := ParseWorkbook(buf, nil)
	require.NoError(t, err)
	return table
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name        string
		headers     []string
		wantMissing []string
	}{
		{
			name:    "all required present",
			headers: []string{"Festival", "Sentiment", "Emoji", "Emotion", "Tweet"},
		},
		{
			name:    "extra columns are fine",
			headers: []string{"Festival", "Sentiment", "Emoji", "Emotion", "Tweet", "Date", "Author_ID", "Likes"},
		},
		{
			name:        "one missing",
			headers:     []string{"Festival", "Emoji", "Emotion", "Tweet"},
			wantMissing: []string{"Sentiment"},
		},
		{
			name:        "several missing reported in canonical order",
			headers:     []string{"Tweet", "Emoji"},
			wantMissing: []string{"Festival", "Sentiment", "Emotion"},
		},
		{
			name:        "nothing matches",
			headers:     []string{"A", "B"},
			wantMissing: domain.RequiredColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchema(tableWithHeaders(t, tt.headers))
			if tt.wantMissing == nil {
				assert.NoError(t, err)
				return
			}

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.wantMissing, schemaErr.Missing)
		})
	}

	t.Run("validation is repeatable", func(t *testing.T) {
		table := tableWithHeaders(t, []string{"Tweet"})
		first := ValidateSchema(table)
		second := ValidateSchema(table)
		assert.Equal(t, first, second)
	})
}
