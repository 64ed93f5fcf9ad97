package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModificationRecord_ChangePercent(t *testing.T) {
	r, err := NewModificationRecord("mod-1", "evt-1", "doc-1", "0123456789", "0123456789abcde", 5, 0)
	require.NoError(t, err)

	assert.Equal(t, 10, r.OriginalLength)
	assert.Equal(t, 15, r.ModifiedLength)
	assert.InDelta(t, 50.0, r.ChangePercent, 0.001)
}

func TestNewModificationRecord_EmptyOriginalUsesFloorOne(t *testing.T) {
	r, err := NewModificationRecord("mod-1", "evt-1", "doc-1", "", "hello", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.OriginalLength)
	assert.InDelta(t, 500.0, r.ChangePercent, 0.001)
}

func TestNewModificationRecord_RequiresIdentifiers(t *testing.T) {
	_, err := NewModificationRecord("", "evt-1", "doc-1", "a", "b", 1, 0)
	assert.Error(t, err)
}
