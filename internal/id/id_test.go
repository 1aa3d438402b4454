package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 500 {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "duplicate ID: %s", id)
		ids[id] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixBook, PrefixCategory, "custom"} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+21)
		})
	}
}

func TestTypedConstructors(t *testing.T) {
	bookID, err := NewBookID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(bookID, "book-"))

	catID, err := NewCategoryID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(catID, "cat-"))
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, strings.HasPrefix(MustGenerate("x"), "x-"))
	})
}
