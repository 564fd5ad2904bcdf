package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "https://bucket.s3.eu-west-3.amazonaws.com/" + key, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func withMedia(t *testing.T, store MediaStore) {
	original := Media
	Media = store
	t.Cleanup(func() { Media = original })
}

func TestNewKey(t *testing.T) {
	key, err := NewKey("posts", "Photo.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	_, err = NewKey("posts", "script.sh")
	assert.ErrorIs(t, err, ErrInvalidExtension)
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "avatars/abc.png", KeyFromURL("https://bucket.s3.eu-west-3.amazonaws.com/avatars/abc.png"))
	assert.Equal(t, "", KeyFromURL("https://bucket.s3.eu-west-3.amazonaws.com"))
}

func TestUploadWithoutStore(t *testing.T) {
	withMedia(t, nil)

	_, err := Upload(context.Background(), "posts", "a.png", "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrMediaDisabled)
	assert.NoError(t, Remove(context.Background(), "https://bucket/posts/a.png"))
}

func TestUploadAndRemove(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	withMedia(t, store)

	url, err := Upload(context.Background(), "posts", "a.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Len(t, store.objects, 1)

	require.NoError(t, Remove(context.Background(), url))
	assert.Empty(t, store.objects)
}
