package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSubmissionIdGeneration(t *testing.T) {
	id := NewSubmissionId()
	// canonical uuid form, 32 hex characters and 4 dashes
	require.Len(t, id, 36)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestSubmissionIdsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSubmissionId()
		require.False(t, seen[id], "duplicate submission id %s", id)
		seen[id] = true
	}
}
