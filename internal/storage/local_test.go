package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	ref, err := s.Save(ctx, "small.gif", strings.NewReader("GIF89a"))
	require.NoError(t, err)
	assert.Equal(t, "posts/small.gif", ref)

	rc, err := s.Open(ctx, ref)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))
}

func TestLocalStore_NameCollision(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	first, err := s.Save(ctx, "small.gif", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "small.gif", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "posts/small_"))
	assert.True(t, strings.HasSuffix(second, ".gif"))
}

func TestLocalStore_Open_Invalid(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	for _, ref := range []string{"posts/missing.gif", "../etc/passwd", "posts/../../x", "other/a.gif"} {
		_, err := s.Open(ctx, ref)
		assert.ErrorIs(t, err, ErrNotExist, ref)
	}
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	ref, err := s.Save(ctx, "small.gif", strings.NewReader("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, ref))

	_, err = s.Open(ctx, ref)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.ErrorIs(t, s.Delete(ctx, ref), ErrNotExist)
	assert.ErrorIs(t, s.Delete(ctx, "../outside.gif"), ErrNotExist)
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"cat.gif":            "cat.gif",
		"../../etc/passwd":   "passwd",
		`C:\photos\dog.png`:  "dog.png",
		"my holiday pic.jpg": "my_holiday_pic.jpg",
		".hidden":            "hidden",
		"":                   "image",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanName(in), in)
	}
}
