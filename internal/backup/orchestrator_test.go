package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

func newTestOrchestrator(t *testing.T, store DefaultTargetStore, clock Clock) *Orchestrator {
	t.Helper()
	return NewOrchestrator(store,
		WithClock(clock),
		WithLogger(logging.ForTest(t)),
		WithSortEntries(true),
	)
}

func TestOrchestrator_Example(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]fileSpec{
		"a.txt":     {"hello", 0o644},
		"sub/b.txt": {"world", 0o600},
	})
	target := t.TempDir()
	clock := fixedClock(t, date(2024, time.November, 20, 10, 0, 0))

	o := newTestOrchestrator(t, newMockStore(t), clock)
	result, err := o.Run(Request{Source: src, TargetBase: target})
	require.NoError(t, err)

	wantRoot := filepath.Join(target, "Backup 2024-11-20 10-00-00")
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, target, result.TargetBase)
	assert.Equal(t, wantRoot, result.Root)

	for rel, want := range map[string]string{"a.txt": "hello", "sub/b.txt": "world"} {
		got, err := os.ReadFile(filepath.Join(wantRoot, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
	info, err := os.Stat(filepath.Join(wantRoot, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	c := result.Counts()
	assert.Equal(t, 2, c.Files)
	assert.Equal(t, 2, c.Directories)
}

func TestOrchestrator_UsesDefaultTarget(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]fileSpec{"f": {"x", 0o644}})
	target := filepath.Join(t.TempDir(), "not", "yet", "there")

	store := newMockStore(t)
	store.On("ReadDefaultTarget").Return(target).Once()

	o := newTestOrchestrator(t, store, fixedClock(t, date(2024, time.November, 20, 10, 0, 0)))
	result, err := o.Run(Request{Source: src})
	require.NoError(t, err)

	assert.Equal(t, target, result.TargetBase)
	assert.DirExists(t, filepath.Join(target, "Backup 2024-11-20 10-00-00"))
}

func TestOrchestrator_TwoRunsDistinctSeconds(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]fileSpec{"f": {"x", 0o644}})
	target := t.TempDir()
	clock := fixedClock(t,
		date(2024, time.November, 20, 10, 0, 0),
		date(2024, time.November, 20, 10, 0, 1),
	)
	o := newTestOrchestrator(t, newMockStore(t), clock)

	first, err := o.Run(Request{Source: src, TargetBase: target})
	require.NoError(t, err)
	second, err := o.Run(Request{Source: src, TargetBase: target})
	require.NoError(t, err)

	assert.NotEqual(t, first.Root, second.Root)
	entries, err := List(target)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Backup 2024-11-20 10-00-01", entries[0].Name)
	assert.Equal(t, "Backup 2024-11-20 10-00-00", entries[1].Name)
}

func TestOrchestrator_SameSecondReusesRoot(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]fileSpec{"f": {"x", 0o644}})
	target := t.TempDir()
	now := date(2024, time.November, 20, 10, 0, 0)
	o := newTestOrchestrator(t, newMockStore(t), fixedClock(t, now, now))

	first, err := o.Run(Request{Source: src, TargetBase: target})
	require.NoError(t, err)
	second, err := o.Run(Request{Source: src, TargetBase: target})
	require.NoError(t, err)

	assert.Equal(t, first.Root, second.Root)
	assert.Equal(t, StatusSuccess, second.Status)
}

func TestOrchestrator_OverrideDefault(t *testing.T) {
	target := filepath.Join(t.TempDir(), "mnt", "usb")

	store := newMockStore(t)
	store.On("WriteDefaultTarget", target).Return(nil).Once()

	o := newTestOrchestrator(t, store, nil)
	result, err := o.Run(Request{Source: t.TempDir(), TargetBase: target, OverrideDefault: true})
	require.NoError(t, err)

	assert.Equal(t, StatusConfigUpdated, result.Status)
	assert.Equal(t, target, result.TargetBase)
	assert.Empty(t, result.Root)
	assert.Empty(t, result.Outcomes)
	assert.NoDirExists(t, target, "configuration mode copies nothing")
}

func TestOrchestrator_OverrideDefaultWithoutSource(t *testing.T) {
	store := newMockStore(t)
	store.On("WriteDefaultTarget", "/mnt/usb").Return(nil).Once()

	result, err := newTestOrchestrator(t, store, nil).Run(Request{TargetBase: "/mnt/usb", OverrideDefault: true})
	require.NoError(t, err)
	assert.Equal(t, StatusConfigUpdated, result.Status)
}

func TestOrchestrator_OverrideDefaultErrors(t *testing.T) {
	t.Run("write failure", func(t *testing.T) {
		store := newMockStore(t)
		writeErr := errors.Mark(errors.New("disk full"), errors.ErrConfigWrite)
		store.On("WriteDefaultTarget", "/mnt/usb").Return(writeErr).Once()

		_, err := newTestOrchestrator(t, store, nil).Run(Request{TargetBase: "/mnt/usb", OverrideDefault: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrConfigWrite))
	})

	t.Run("empty target", func(t *testing.T) {
		_, err := newTestOrchestrator(t, newMockStore(t), nil).Run(Request{OverrideDefault: true})
		assert.ErrorIs(t, err, ErrNoTarget)
	})
}

func TestOrchestrator_InvalidSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeTree(t, dir, map[string]fileSpec{"file": {"x", 0o644}})

	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"missing", filepath.Join(dir, "missing")},
		{"not a directory", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := t.TempDir()
			o := newTestOrchestrator(t, newMockStore(t), nil)

			_, err := o.Run(Request{Source: tt.source, TargetBase: target})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidSource))

			entries, err := os.ReadDir(target)
			require.NoError(t, err)
			assert.Empty(t, entries, "no root is created for an invalid source")
		})
	}
}

func TestOrchestrator_RootCreationFailure(t *testing.T) {
	src := t.TempDir()

	t.Run("target is a file", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]fileSpec{"target": {"", 0o644}})

		o := newTestOrchestrator(t, newMockStore(t), fixedClock(t, date(2024, time.November, 20, 10, 0, 0)))
		_, err := o.Run(Request{Source: src, TargetBase: filepath.Join(dir, "target")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCreateRoot))
	})

	t.Run("path too long", func(t *testing.T) {
		base := "/" + strings.Repeat("a", MaxPathLen)
		o := newTestOrchestrator(t, newMockStore(t), fixedClock(t, date(2024, time.November, 20, 10, 0, 0)))
		_, err := o.Run(Request{Source: src, TargetBase: base})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCreateRoot))
		assert.True(t, errors.Is(err, ErrPathTooLong))
	})

	t.Run("existing file at root path", func(t *testing.T) {
		target := t.TempDir()
		writeTree(t, target, map[string]fileSpec{"Backup 2024-11-20 10-00-00": {"", 0o644}})

		o := newTestOrchestrator(t, newMockStore(t), fixedClock(t, date(2024, time.November, 20, 10, 0, 0)))
		_, err := o.Run(Request{Source: src, TargetBase: target})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCreateRoot))
	})
}

func TestOrchestrator_PartialSuccess(t *testing.T) {
	skipIfRoot(t)

	src := t.TempDir()
	writeTree(t, src, map[string]fileSpec{
		"ok.txt":     {"fine", 0o644},
		"locked.txt": {"nope", 0o000},
	})

	o := newTestOrchestrator(t, newMockStore(t), fixedClock(t, date(2024, time.November, 20, 10, 0, 0)))
	result, err := o.Run(Request{Source: src, TargetBase: t.TempDir()})
	require.NoError(t, err, "per-entry failures are not run errors")

	assert.Equal(t, StatusPartial, result.Status)
	require.Len(t, result.Failed(), 1)
	assert.Equal(t, filepath.Join(src, "locked.txt"), result.Failed()[0].Path)
	assert.FileExists(t, filepath.Join(result.Root, "ok.txt"))
}

func TestNewOrchestrator_Defaults(t *testing.T) {
	o := NewOrchestrator(nil)
	assert.Equal(t, DefaultChunkSize, o.chunkSize)
	assert.IsType(t, SystemClock{}, o.clock)
	assert.NotNil(t, o.logger)

	o = NewOrchestrator(nil, WithChunkSize(-1), WithClock(nil))
	assert.Equal(t, DefaultChunkSize, o.chunkSize)
	assert.IsType(t, SystemClock{}, o.clock)

	o = NewOrchestrator(nil, WithChunkSize(512))
	assert.Equal(t, 512, o.chunkSize)
}
