package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGroupsLifecycle(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "blog.db") + "?_foreign_keys=1"

	out, err := runCmd(t, "migrate", "--database-url", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = runCmd(t, "groups", "create", "cats", "Cats", "--description", "all about cats", "--database-url", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "created group 1 cats")

	out, err = runCmd(t, "groups", "list", "--database-url", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "1\tcats\tCats")

	_, err = runCmd(t, "groups", "create", "cats", "Again", "--database-url", dsn)
	assert.Error(t, err)

	out, err = runCmd(t, "groups", "delete", "cats", "--database-url", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted group cats")

	_, err = runCmd(t, "groups", "delete", "cats", "--database-url", dsn)
	assert.Error(t, err)
}

func TestUsersDelete_Unknown(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "blog.db") + "?_foreign_keys=1"
	_, err := runCmd(t, "migrate", "--database-url", dsn)
	require.NoError(t, err)

	_, err = runCmd(t, "users", "delete", "ghost", "--database-url", dsn)
	assert.Error(t, err)
}

func TestCacheClear_WithoutRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	out, err := runCmd(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "in-process cache")
}

func TestCacheClear_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("blog:page:/", "cached"))
	require.NoError(t, mr.Set("blog:page:/?page=2", "cached"))
	require.NoError(t, mr.Set("session:abc", "keep"))
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())

	out, err := runCmd(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "page cache cleared")
	assert.Equal(t, []string{"session:abc"}, mr.Keys())
}
