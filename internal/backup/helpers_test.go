package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	mock.Mock
}

func (m *mockClock) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func fixedClock(t *testing.T, times ...time.Time) *mockClock {
	t.Helper()
	c := &mockClock{}
	for _, tm := range times {
		c.On("Now").Return(tm).Once()
	}
	t.Cleanup(func() { c.AssertExpectations(t) })
	return c
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ReadDefaultTarget() string {
	return m.Called().String(0)
}

func (m *mockStore) WriteDefaultTarget(path string) error {
	return m.Called(path).Error(0)
}

func newMockStore(t *testing.T) *mockStore {
	t.Helper()
	s := &mockStore{}
	t.Cleanup(func() { s.AssertExpectations(t) })
	return s
}

// fileSpec describes a file to create under a test tree.
type fileSpec struct {
	content string
	mode    os.FileMode
}

// writeTree creates files (and their parent directories) under root.
func writeTree(t *testing.T, root string, files map[string]fileSpec) {
	t.Helper()
	for rel, f := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f.content), 0o600))
		require.NoError(t, os.Chmod(p, f.mode))
	}
}

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
}

func date(y int, mo time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, mo, d, h, mi, s, 0, time.Local)
}
