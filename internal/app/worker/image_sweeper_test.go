package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"catalog_api/internal/app/upload"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/domain/repository"
	"catalog_api/internal/platform/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	files   []upload.ImageFile
	removed []string
}

func (f *fakeImages) List() ([]upload.ImageFile, error) { return f.files, nil }

func (f *fakeImages) Remove(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

type fakeLocker struct {
	ok       bool
	err      error
	released bool
}

func (l *fakeLocker) Acquire(ctx context.Context) (func(), bool, error) {
	return func() { l.released = true }, l.ok, l.err
}

func newSweeperFixture(t *testing.T, locker Locker) (*ImageSweeper, *fakeImages) {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	repo := repository.NewFileProductRepository(store)
	require.NoError(t, repo.Create(context.Background(), &model.Product{Name: "Mug", ImageFilename: "used.png"}))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	images := &fakeImages{files: []upload.ImageFile{
		{Name: "used.png", ModTime: now.Add(-48 * time.Hour)},
		{Name: "orphan.png", ModTime: now.Add(-48 * time.Hour)},
		{Name: "fresh.png", ModTime: now.Add(-time.Minute)},
	}}
	w := NewImageSweeper(repo, images, locker, time.Minute, time.Hour)
	w.now = func() time.Time { return now }
	return w, images
}

func TestSweepOnceRemovesOnlyOldOrphans(t *testing.T) {
	w, images := newSweeperFixture(t, nil)

	n, err := w.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"orphan.png"}, images.removed)
}

func TestSweepOnceRespectsLock(t *testing.T) {
	held := &fakeLocker{ok: false}
	w, images := newSweeperFixture(t, held)
	n, err := w.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, images.removed)

	free := &fakeLocker{ok: true}
	w, _ = newSweeperFixture(t, free)
	_, err = w.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, free.released)

	broken := &fakeLocker{err: errors.New("redis down")}
	w, _ = newSweeperFixture(t, broken)
	_, err = w.SweepOnce(context.Background())
	assert.Error(t, err)
}

func TestStartStopsOnCancel(t *testing.T) {
	w, _ := newSweeperFixture(t, nil)
	w.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
