package postgres

import (
	"testing"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	collection, id, err := SplitPath("User/abc-123")
	require.NoError(t, err)
	assert.Equal(t, "User", collection)
	assert.Equal(t, "abc-123", id)

	collection, id, err = SplitPath("/banners/x/")
	require.NoError(t, err)
	assert.Equal(t, "banners", collection)
	assert.Equal(t, "x", id)

	for _, bad := range []string{"", "User", "User/", "/id", "a/b/c"} {
		_, _, err := SplitPath(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidPath, bad)
	}
}

func TestDecodeItem(t *testing.T) {
	payload := []byte(`{"id":"b-1","name":"Tata","price_minor":500,"available":true,"grade":"A","user_id":"u"}`)

	item, err := DecodeItem("push-key", payload)
	require.NoError(t, err)
	assert.Equal(t, domain.Item{ID: "b-1", Name: "Tata", PriceMinor: 500, Available: true}, item)

	item, err = DecodeItem("push-key", []byte(`{"name":"No id"}`))
	require.NoError(t, err)
	assert.Equal(t, "push-key", item.ID)

	_, err = DecodeItem("k", []byte(`not json`))
	assert.Error(t, err)
}

func TestBlobURL(t *testing.T) {
	s := NewStore(nil, nil, "https://cdn.test/blobs/", logger.Nop())
	assert.Equal(t, "https://cdn.test/blobs/banners/a%20b", s.BlobURL("banners/a b"))
}
