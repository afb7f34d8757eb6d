package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electr1fy0/jot/storage"
)

type recorder struct {
	views []View
}

func (r *recorder) Render(v View) { r.views = append(r.views, v) }

func (r *recorder) last(t *testing.T) View {
	t.Helper()
	require.NotEmpty(t, r.views, "nothing rendered")
	return r.views[len(r.views)-1]
}

type fixture struct {
	ctx   context.Context
	store *storage.SQLiteStore
	rec   *recorder
	clock time.Time
	c     *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{
		ctx:   context.Background(),
		store: s,
		rec:   &recorder{},
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.c = New(s, f.rec, WithClock(func() time.Time { return f.clock }))
	return f
}

func (f *fixture) save(t *testing.T, text string) storage.Note {
	t.Helper()
	n, created, err := f.c.Save(f.ctx, text)
	require.NoError(t, err)
	require.True(t, created)
	return n
}

func (f *fixture) all(t *testing.T) []storage.Note {
	t.Helper()
	notes, err := f.store.GetAll(f.ctx)
	require.NoError(t, err)
	return notes
}

func TestSaveRoundTrip(t *testing.T) {
	f := newFixture(t)
	before := f.clock.UnixMilli()

	f.save(t, "Buy milk")

	notes := f.all(t)
	require.Len(t, notes, 1)
	assert.Equal(t, "Buy milk", notes[0].Text)
	assert.EqualValues(t, before, notes[0].CreatedAt)

	v := f.rec.last(t)
	require.Len(t, v.Items, 1)
	assert.Equal(t, notes[0].ID, v.Items[0].ID)
	assert.Equal(t, "just now", v.Items[0].Age)
}

func TestSaveTrimsInput(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "  padded \n")
	assert.Equal(t, "padded", n.Text)
}

func TestSaveRejectsBlankInput(t *testing.T) {
	f := newFixture(t)
	for _, in := range []string{"", "   ", "\n\t"} {
		_, created, err := f.c.Save(f.ctx, in)
		require.NoError(t, err)
		assert.False(t, created)
	}
	assert.Empty(t, f.all(t))
	assert.Empty(t, f.rec.views)
}

func TestSaveIDsAreUnique(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		n := f.save(t, "same text")
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestReloadSortsNewestFirst(t *testing.T) {
	f := newFixture(t)
	for _, ts := range []int64{100, 300, 200} {
		_, err := f.store.Create(f.ctx, "n", ts)
		require.NoError(t, err)
	}

	require.NoError(t, f.c.Reload(f.ctx))

	var got []int64
	for _, it := range f.rec.last(t).Items {
		got = append(got, it.CreatedAt)
	}
	assert.Equal(t, []int64{300, 200, 100}, got)
}

func TestReloadEmptyView(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Reload(f.ctx))
	assert.True(t, f.rec.last(t).Empty())
}

func TestReloadSanitizesAndLabels(t *testing.T) {
	f := newFixture(t)
	old := f.clock.Add(-3 * time.Hour).UnixMilli()
	require.NoError(t, f.store.Replace(f.ctx, storage.Note{ID: "x", Text: "\x1b[31mred\x1b[0m\nline", CreatedAt: old}))

	require.NoError(t, f.c.Reload(f.ctx))

	it := f.rec.last(t).Items[0]
	assert.Equal(t, "red line", it.Text)
	assert.Equal(t, "3 hours ago", it.Age)
}

func TestEditPreservesIdentity(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "draft")

	text, err := f.c.BeginEdit(f.ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", text)
	id, editing := f.c.Editing()
	assert.True(t, editing)
	assert.Equal(t, n.ID, id)

	f.clock = f.clock.Add(time.Hour)
	out, err := f.c.ConfirmEdit(f.ctx, "  final  ")
	require.NoError(t, err)
	assert.Equal(t, EditSaved, out)

	got, err := f.store.Get(f.ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.Note{ID: n.ID, Text: "final", CreatedAt: n.CreatedAt}, got)

	_, editing = f.c.Editing()
	assert.False(t, editing)
	notice, ok := f.c.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeSuccess, notice.Kind)
	assert.False(t, notice.Undoable())
}

func TestConfirmEditEmptyKeepsState(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "original")
	_, err := f.c.BeginEdit(f.ctx, n.ID)
	require.NoError(t, err)

	for _, in := range []string{"", "   "} {
		out, err := f.c.ConfirmEdit(f.ctx, in)
		require.NoError(t, err)
		assert.Equal(t, EditEmpty, out)
	}

	id, editing := f.c.Editing()
	assert.True(t, editing)
	assert.Equal(t, n.ID, id)
	got, err := f.store.Get(f.ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Text)
}

func TestConfirmEditVanishedNote(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "soon gone")
	_, err := f.c.BeginEdit(f.ctx, n.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(f.ctx, n.ID))
	renders := len(f.rec.views)

	out, err := f.c.ConfirmEdit(f.ctx, "new text")
	require.NoError(t, err)
	assert.Equal(t, EditVanished, out)

	assert.Empty(t, f.all(t))
	assert.Len(t, f.rec.views, renders)
	_, editing := f.c.Editing()
	assert.False(t, editing)
	_, ok := f.c.Notice()
	assert.False(t, ok)
}

func TestCancelEdit(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "keep")
	_, err := f.c.BeginEdit(f.ctx, n.ID)
	require.NoError(t, err)

	f.c.CancelEdit()

	_, editing := f.c.Editing()
	assert.False(t, editing)
	out, err := f.c.ConfirmEdit(f.ctx, "ignored")
	require.NoError(t, err)
	assert.Equal(t, EditIgnored, out)
	got, err := f.store.Get(f.ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Text)
}

func TestBeginEditUnknownNote(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.BeginEdit(f.ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, editing := f.c.Editing()
	assert.False(t, editing)
}

func TestUndoRestoresExactly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Replace(f.ctx, storage.Note{ID: "X", Text: "A", CreatedAt: 1234}))

	deleted, err := f.c.Delete(f.ctx, "X")
	require.NoError(t, err)
	require.True(t, deleted)
	assert.Empty(t, f.all(t))
	notice, ok := f.c.Notice()
	require.True(t, ok)
	assert.True(t, notice.Undoable())

	restored, err := f.c.Undo(f.ctx)
	require.NoError(t, err)
	assert.True(t, restored)

	assert.Equal(t, []storage.Note{{ID: "X", Text: "A", CreatedAt: 1234}}, f.all(t))
	_, ok = f.c.Notice()
	assert.False(t, ok, "undo hides the notice")
	_, held := f.c.Held()
	assert.False(t, held)
	assert.Len(t, f.rec.last(t).Items, 1)
}

func TestUndoAfterExpiry(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "temporary")
	_, err := f.c.Delete(f.ctx, n.ID)
	require.NoError(t, err)
	notice, _ := f.c.Notice()

	assert.True(t, f.c.Expire(notice.Gen))

	restored, err := f.c.Undo(f.ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Empty(t, f.all(t))
}

func TestSingleSlotOverwrite(t *testing.T) {
	f := newFixture(t)
	a := f.save(t, "A")
	b := f.save(t, "B")

	_, err := f.c.Delete(f.ctx, a.ID)
	require.NoError(t, err)
	_, err = f.c.Delete(f.ctx, b.ID)
	require.NoError(t, err)

	restored, err := f.c.Undo(f.ctx)
	require.NoError(t, err)
	require.True(t, restored)

	notes := f.all(t)
	require.Len(t, notes, 1)
	assert.Equal(t, b.ID, notes[0].ID)

	restored, err = f.c.Undo(f.ctx)
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestStaleTimerIgnored(t *testing.T) {
	f := newFixture(t)
	a := f.save(t, "A")
	b := f.save(t, "B")

	_, err := f.c.Delete(f.ctx, a.ID)
	require.NoError(t, err)
	first, _ := f.c.Notice()
	_, err = f.c.Delete(f.ctx, b.ID)
	require.NoError(t, err)
	second, _ := f.c.Notice()
	require.NotEqual(t, first.Gen, second.Gen)

	assert.False(t, f.c.Expire(first.Gen))
	held, ok := f.c.Held()
	require.True(t, ok)
	assert.Equal(t, b.ID, held.ID)

	assert.True(t, f.c.Expire(second.Gen))
	_, ok = f.c.Held()
	assert.False(t, ok)
}

func TestNewNoticeRestartsTimer(t *testing.T) {
	f := newFixture(t)
	a := f.save(t, "A")
	_, err := f.c.Delete(f.ctx, a.ID)
	require.NoError(t, err)
	del, _ := f.c.Notice()

	info := f.c.Notify("copied", NoticeInfo)
	assert.False(t, f.c.Expire(del.Gen))
	_, ok := f.c.Held()
	assert.True(t, ok, "slot survives a superseded timer")

	assert.True(t, f.c.Expire(info.Gen))
	_, ok = f.c.Held()
	assert.False(t, ok)
}

func TestDeleteTwiceKeepsSlot(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "once")

	deleted, err := f.c.Delete(f.ctx, n.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = f.c.Delete(f.ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	held, ok := f.c.Held()
	require.True(t, ok)
	assert.Equal(t, n.ID, held.ID)
}

type failingStore struct {
	storage.Store
	err error
}

func (s failingStore) Create(context.Context, string, int64) (storage.Note, error) {
	return storage.Note{}, s.err
}

func (s failingStore) GetAll(context.Context) ([]storage.Note, error) { return nil, s.err }

func TestStorageErrorsPropagate(t *testing.T) {
	serr := &storage.StorageError{Op: "create", Err: errors.New("disk full")}
	rec := &recorder{}
	c := New(failingStore{err: serr}, rec)

	_, created, err := c.Save(context.Background(), "hello")
	assert.False(t, created)
	var target *storage.StorageError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "create", target.Op)

	err = c.Reload(context.Background())
	assert.ErrorAs(t, err, &target)
	assert.Empty(t, rec.views)
}

type reloadFailingStore struct {
	storage.Store
}

func (reloadFailingStore) GetAll(context.Context) ([]storage.Note, error) {
	return nil, &storage.StorageError{Op: "get all", Err: errors.New("io")}
}

func TestDeleteReloadFailureStillExpires(t *testing.T) {
	f := newFixture(t)
	n := f.save(t, "doomed")
	c := New(reloadFailingStore{f.store}, &recorder{})

	res, err := c.Dispatch(f.ctx, Event{Action: ActionDelete, ID: n.ID})
	require.Error(t, err)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Notice)
	assert.True(t, res.Notice.Undoable())
	_, held := c.Held()
	require.True(t, held)

	assert.True(t, c.Expire(res.Notice.Gen))
	_, held = c.Held()
	assert.False(t, held)
}
