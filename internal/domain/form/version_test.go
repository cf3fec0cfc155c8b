package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersion_AssignsSequentialPositions(t *testing.T) {
	s := schemaWith(
		field("id", "b", "type", "text", "label", "B", "position", 7),
		field("type", "email", "label", "Email", "position", 2),
		field("id", "c", "type", "select", "label", "C", "options", []any{map[string]any{"value": "x", "label": "X"}}),
	)

	v, err := NewVersion(1, 1, s)
	require.NoError(t, err)

	fields := v.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, 1, fields[0].Position)
	assert.Equal(t, "b", fields[0].Key)
	assert.Equal(t, 2, fields[1].Position)
	assert.Equal(t, "field_2", fields[1].Key)
	assert.Equal(t, 3, fields[2].Position)
	assert.Equal(t, []Option{{Value: "x", Label: "X"}}, fields[2].Options)
}

func TestNewVersion_RejectsInvalidSchema(t *testing.T) {
	_, err := NewVersion(1, 1, schemaWith(field("id", "f1", "type", "select", "label", "Choice", "options", []any{})))
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestNewVersion_ClonesSchema(t *testing.T) {
	s := schemaWith(field("id", "f1", "type", "text", "label", "A"))
	v, err := NewVersion(1, 1, s)
	require.NoError(t, err)

	s["fields"] = []any{}
	assert.Len(t, v.Schema().Fields(), 1)
}

func TestPruneCount(t *testing.T) {
	tests := []struct {
		existing, cap, want int
	}{
		{0, 10, 0},
		{9, 10, 0},
		{10, 10, 1},
		{12, 10, 3},
		{3, 1, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PruneCount(tt.existing, tt.cap), "existing=%d cap=%d", tt.existing, tt.cap)
	}
}

func TestCheckDeletable(t *testing.T) {
	assert.ErrorIs(t, CheckDeletable(1, 1, 1), ErrLastVersion)
	assert.ErrorIs(t, CheckDeletable(3, 5, 5), ErrMostRecentVersion)
	assert.NoError(t, CheckDeletable(3, 5, 4))
}
