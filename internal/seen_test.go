package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedSet_EvictsOldestInserted(t *testing.T) {
	s, err := NewBoundedSet(3)
	require.NoError(t, err)

	s.Add("a")
	s.Add("b")
	s.Add("c")

	// lookups and re-adds do not refresh "a"
	assert.True(t, s.Contains("a"))
	s.Add("a")

	s.Add("d")
	assert.False(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
	assert.True(t, s.Contains("d"))
	assert.Equal(t, 3, s.Len())
}

func TestBoundedSet_Capacity(t *testing.T) {
	s, err := NewBoundedSet(301)
	require.NoError(t, err)

	for i := range 400 {
		s.Add(fmt.Sprintf("t1_%d", i))
	}
	assert.Equal(t, 301, s.Len())
	assert.False(t, s.Contains("t1_98"))
	assert.True(t, s.Contains("t1_99"))
}

func TestNewBoundedSet_InvalidSize(t *testing.T) {
	_, err := NewBoundedSet(0)
	assert.Error(t, err)
}
