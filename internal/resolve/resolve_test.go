package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akari-env/akari/internal/resolve"
	"github.com/akari-env/akari/internal/snapshot"
	"github.com/akari-env/akari/internal/testutil"
)

func newHistory(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, snapshot.EnsureTracked(dir, testutil.TestUserName, testutil.TestUserEmail))
	return dir
}

func tag(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(name+"\n"), 0644))
	snap, err := snapshot.Create(dir, name, "")
	require.NoError(t, err)
	return snap.Ref
}

func TestResolveLiteralTag(t *testing.T) {
	dir := newHistory(t)
	v1 := tag(t, dir, "v1")

	ref, err := resolve.Ref(dir, "v1")
	require.NoError(t, err)
	assert.Equal(t, v1, ref)
}

func TestResolveUnknownTag(t *testing.T) {
	dir := newHistory(t)
	tag(t, dir, "v1")

	_, err := resolve.Ref(dir, "v9")
	assert.ErrorIs(t, err, resolve.ErrUnknownTag)
}

func TestLatestPrefersDescendant(t *testing.T) {
	dir := newHistory(t)
	tag(t, dir, "v1")
	v2 := tag(t, dir, "v2")

	// v2 descends from v1, so latest must never answer v1.
	ref, err := resolve.Ref(dir, resolve.Latest)
	require.NoError(t, err)
	assert.Equal(t, v2, ref)
}

func TestLatestSkipsUntaggedHead(t *testing.T) {
	dir := newHistory(t)
	tag(t, dir, "v1")
	v2 := tag(t, dir, "v2")

	// An untagged commit on top: latest walks back to the nearest tag.
	testutil.Git(t, dir, "commit", "-q", "--allow-empty", "-m", "untagged work")

	ref, err := resolve.Ref(dir, resolve.Latest)
	require.NoError(t, err)
	assert.Equal(t, v2, ref)
}

func TestLatestAfterCheckoutFollowsNewBranch(t *testing.T) {
	dir := newHistory(t)
	v1 := tag(t, dir, "v1")
	tag(t, dir, "v2")

	// Checking out v1 moves head; a tag made there is now the nearest.
	require.NoError(t, snapshot.Checkout(dir, v1))
	v3 := tag(t, dir, "v3")

	ref, err := resolve.Ref(dir, resolve.Latest)
	require.NoError(t, err)
	assert.Equal(t, v3, ref)
}

func TestLatestIgnoresTagNameOrder(t *testing.T) {
	dir := newHistory(t)
	tag(t, dir, "zzz-old")
	newest := tag(t, dir, "aaa-new")

	// Ancestry decides, not lexical tag order.
	ref, err := resolve.Ref(dir, resolve.Latest)
	require.NoError(t, err)
	assert.Equal(t, newest, ref)
}

func TestLatestAmbiguousOnEquidistantBranches(t *testing.T) {
	dir := newHistory(t)

	// Two tags at equal ancestry distance behind an untagged merge.
	testutil.Git(t, dir, "checkout", "-q", "-b", "left")
	testutil.Git(t, dir, "commit", "-q", "--allow-empty", "-m", "left work")
	testutil.Git(t, dir, "tag", "-a", "-m", "la", "la")
	testutil.Git(t, dir, "checkout", "-q", "main")
	testutil.Git(t, dir, "checkout", "-q", "-b", "right")
	testutil.Git(t, dir, "commit", "-q", "--allow-empty", "-m", "right work")
	testutil.Git(t, dir, "tag", "-a", "-m", "ra", "ra")
	testutil.Git(t, dir, "checkout", "-q", "main")
	testutil.Git(t, dir, "merge", "-q", "--no-ff", "-m", "join", "left", "right")

	_, err := resolve.Ref(dir, resolve.Latest)
	assert.ErrorIs(t, err, resolve.ErrAmbiguousLatest)
}

func TestLatestWithNoTags(t *testing.T) {
	dir := newHistory(t)

	_, err := resolve.Ref(dir, resolve.Latest)
	assert.ErrorIs(t, err, resolve.ErrUnknownTag)
}

func TestLatestOnTaggedHead(t *testing.T) {
	dir := newHistory(t)
	v1 := tag(t, dir, "v1")

	ref, err := resolve.Ref(dir, resolve.Latest)
	require.NoError(t, err)
	assert.Equal(t, v1, ref)
}
