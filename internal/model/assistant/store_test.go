package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreFindByID(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := store.FindByID("tutor")
	require.True(t, ok)
	assert.Equal(t, "Patient Tutor", p.Name)

	_, ok = store.FindByID("missing")
	assert.False(t, ok)
}

func TestMemoryStoreDefault(t *testing.T) {
	store := NewMemoryStore(Seed())
	assert.Equal(t, "You are a helpful assistant.", store.Default().SystemPrompt)

	custom := NewMemoryStore([]Profile{{ID: "x", SystemPrompt: "custom"}})
	assert.Equal(t, "x", custom.Default().ID)

	empty := NewMemoryStore(nil)
	assert.Equal(t, DefaultID, empty.Default().ID)
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	list := store.List()
	list[0].Name = "changed"

	assert.NotEqual(t, "changed", store.List()[0].Name)
}
