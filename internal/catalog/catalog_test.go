package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedContainsWellKnownModels(t *testing.T) {
	c := Seed()

	m, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "DALL-E 3", m.Name)

	m, ok = c.Get(999)
	require.True(t, ok)
	assert.Equal(t, "Mock AI Service", m.Name)

	_, ok = c.Get(123456)
	assert.False(t, ok)
}

func TestListOrderedByID(t *testing.T) {
	models := Seed().List()
	require.Len(t, models, 5)
	ids := make([]int, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	assert.Equal(t, []int{1, 2, 3, 4, 999}, ids)
}
