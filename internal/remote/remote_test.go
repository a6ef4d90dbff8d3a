package remote_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akari-env/akari/internal/git"
	"github.com/akari-env/akari/internal/models"
	"github.com/akari-env/akari/internal/remote"
	"github.com/akari-env/akari/internal/resolve"
	"github.com/akari-env/akari/internal/snapshot"
	"github.com/akari-env/akari/internal/testutil"
)

func newEnv(t *testing.T, name, url string) *models.Environment {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, snapshot.EnsureTracked(dir, testutil.TestUserName, testutil.TestUserEmail))
	return &models.Environment{Name: name, WorkingDirectory: dir, RemoteURL: url}
}

func tagState(t *testing.T, env *models.Environment, name, content string) models.Snapshot {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(env.WorkingDirectory, name+".txt"), []byte(content), 0644))
	snap, err := snapshot.Create(env.WorkingDirectory, name, "")
	require.NoError(t, err)
	return snap
}

func TestPushNoRemoteBound(t *testing.T) {
	env := newEnv(t, "loner", "")
	tagState(t, env, "v1", "x")

	err := remote.Push(env, "v1")
	assert.ErrorIs(t, err, remote.ErrNoRemoteBound)
}

func TestPushUnknownTag(t *testing.T) {
	env := newEnv(t, "myproj", testutil.BareRemote(t))

	err := remote.Push(env, "ghost")
	assert.ErrorIs(t, err, resolve.ErrUnknownTag)
}

func TestPushAndIdempotence(t *testing.T) {
	env := newEnv(t, "myproj", testutil.BareRemote(t))
	snap := tagState(t, env, "v1", "x")

	require.NoError(t, remote.Push(env, "v1"))

	got, err := git.LsRemoteTag(env.WorkingDirectory, env.RemoteURL, "v1")
	require.NoError(t, err)
	assert.Equal(t, snap.Ref, got)

	// Second push of the same tag is a detected no-op.
	require.NoError(t, remote.Push(env, "v1"))
}

func TestPushConflictingRemoteTag(t *testing.T) {
	url := testutil.BareRemote(t)
	producer := newEnv(t, "producer", url)
	tagState(t, producer, "v1", "theirs")
	require.NoError(t, remote.Push(producer, "v1"))

	// An unrelated environment that reuses the tag name cannot
	// silently overwrite the remote's copy.
	imposter := newEnv(t, "imposter", url)
	tagState(t, imposter, "v1", "mine")
	err := remote.Push(imposter, "v1")
	assert.ErrorIs(t, err, remote.ErrDivergentHistory)
}

func TestPullEmptyRemote(t *testing.T) {
	env := newEnv(t, "myproj", testutil.BareRemote(t))
	tagState(t, env, "v1", "x")

	require.NoError(t, remote.Pull(env))
}

func TestPullFastForward(t *testing.T) {
	url := testutil.BareRemote(t)

	producer := newEnv(t, "producer", url)
	tagState(t, producer, "v1", "one")
	require.NoError(t, git.Push(producer.WorkingDirectory, url, "refs/heads/main", "refs/tags/v1"))

	consumerDir := filepath.Join(t.TempDir(), "consumer")
	require.NoError(t, git.Clone(url, consumerDir))
	consumer := &models.Environment{Name: "consumer", WorkingDirectory: consumerDir, RemoteURL: url}
	require.NoError(t, snapshot.EnsureTracked(consumerDir, testutil.TestUserName, testutil.TestUserEmail))

	// Producer moves ahead.
	tagState(t, producer, "v2", "two")
	require.NoError(t, git.Push(producer.WorkingDirectory, url, "refs/heads/main", "refs/tags/v2"))

	require.NoError(t, remote.Pull(consumer))

	producerHead, err := git.Head(producer.WorkingDirectory)
	require.NoError(t, err)
	consumerHead, err := git.Head(consumerDir)
	require.NoError(t, err)
	assert.Equal(t, producerHead, consumerHead)

	snaps, err := snapshot.List(consumerDir)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestPullIdempotent(t *testing.T) {
	url := testutil.BareRemote(t)

	producer := newEnv(t, "producer", url)
	tagState(t, producer, "v1", "one")
	require.NoError(t, git.Push(producer.WorkingDirectory, url, "refs/heads/main", "refs/tags/v1"))

	consumerDir := filepath.Join(t.TempDir(), "consumer")
	require.NoError(t, git.Clone(url, consumerDir))
	consumer := &models.Environment{Name: "consumer", WorkingDirectory: consumerDir, RemoteURL: url}
	require.NoError(t, snapshot.EnsureTracked(consumerDir, testutil.TestUserName, testutil.TestUserEmail))

	require.NoError(t, remote.Pull(consumer))
	headAfterFirst, err := git.Head(consumerDir)
	require.NoError(t, err)
	tagsAfterFirst, err := snapshot.List(consumerDir)
	require.NoError(t, err)

	require.NoError(t, remote.Pull(consumer))
	headAfterSecond, err := git.Head(consumerDir)
	require.NoError(t, err)
	tagsAfterSecond, err := snapshot.List(consumerDir)
	require.NoError(t, err)

	assert.Equal(t, headAfterFirst, headAfterSecond)
	assert.Equal(t, tagsAfterFirst, tagsAfterSecond)
}

func TestPullDivergentHistory(t *testing.T) {
	url := testutil.BareRemote(t)

	// The remote holds a history grown independently of ours.
	other := newEnv(t, "other", url)
	tagState(t, other, "r1", "theirs")
	require.NoError(t, git.Push(other.WorkingDirectory, url, "refs/heads/main", "refs/tags/r1"))

	env := newEnv(t, "mine", url)
	tagState(t, env, "v1", "mine")

	before, err := snapshot.List(env.WorkingDirectory)
	require.NoError(t, err)
	headBefore, err := git.Head(env.WorkingDirectory)
	require.NoError(t, err)

	err = remote.Pull(env)
	assert.ErrorIs(t, err, remote.ErrDivergentHistory)

	// Neither side moved.
	after, err := snapshot.List(env.WorkingDirectory)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	headAfter, err := git.Head(env.WorkingDirectory)
	require.NoError(t, err)
	assert.Equal(t, headBefore, headAfter)

	remoteTag, err := git.LsRemoteTag(env.WorkingDirectory, url, "r1")
	require.NoError(t, err)
	assert.NotEmpty(t, remoteTag)
}

func TestTransportFailureClassifiedUnreachable(t *testing.T) {
	env := newEnv(t, "myproj", filepath.Join(t.TempDir(), "no-such-remote.git"))
	tagState(t, env, "v1", "x")

	err := remote.Push(env, "v1")
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrRemoteUnreachable)
}
