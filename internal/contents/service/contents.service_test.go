package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbcontents/internal/contents/model"
	"nbcontents/internal/contents/repository"
	"nbcontents/store"
)

type recordingNotifier struct {
	paths []string
}

func (n *recordingNotifier) Publish(path string, m *model.ContentModel) {
	n.paths = append(n.paths, path)
}

type failingStore struct{ err error }

func (f failingStore) Fetch(ctx context.Context, key string) (*store.Record, error) { return nil, f.err }
func (f failingStore) Save(ctx context.Context, key, value string) error { return f.err }

func newService(policy MissingPolicy, n Notifier) *ContentsService {
	clk := func() time.Time { return time.Date(2024, 2, 29, 10, 30, 0, 123456000, time.UTC) }
	s := store.NewMemoryStore("contents").WithClock(clk)
	return NewContentsService(repository.NewContentsRepository(s), policy, n)
}

func TestSaveThenGet(t *testing.T) {
	svc := newService(MissingDefault, nil)
	ctx := context.Background()
	body := `{"cells":[],"metadata":{},"nbformat":4,"nbformat_minor":4}`

	saved, err := svc.SaveNotebook(ctx, "test.ipynb", body)
	require.NoError(t, err)

	got, err := svc.GetNotebook(ctx, "test.ipynb")
	require.NoError(t, err)

	assert.Equal(t, saved, got)
	assert.Equal(t, "test.ipynb", got.Name)
	assert.Equal(t, "test.ipynb", got.Path)
	assert.JSONEq(t, body, string(got.Content))
	assert.Equal(t, len(body), got.Size)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, "", got.Mimetype)
	assert.True(t, got.Writable)
	assert.Equal(t, "notebook", got.Type)
	assert.Equal(t, "2024-02-29T10:30:00.123456Z", got.Created)
	assert.Equal(t, "2024-02-29T10:30:00.123456Z", got.LastModified)
}

func TestSizeCountsBytes(t *testing.T) {
	svc := newService(MissingDefault, nil)
	body := `{"title":"ünïcode"}`

	m, err := svc.SaveNotebook(context.Background(), "u.ipynb", body)
	require.NoError(t, err)
	assert.Equal(t, len([]byte(body)), m.Size)
}

func TestRepeatedSaveLastWriteWins(t *testing.T) {
	svc := newService(MissingDefault, nil)
	ctx := context.Background()

	_, err := svc.SaveNotebook(ctx, "a.ipynb", `{"v":1}`)
	require.NoError(t, err)
	_, err = svc.SaveNotebook(ctx, "a.ipynb", `{"v":2}`)
	require.NoError(t, err)
	_, err = svc.SaveNotebook(ctx, "a.ipynb", `{"v":2}`)
	require.NoError(t, err)

	m, err := svc.GetNotebook(ctx, "a.ipynb")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(m.Content))
}

func TestMissingServesDefault(t *testing.T) {
	svc := newService(MissingDefault, nil)

	for _, name := range []string{"never_saved.ipynb", ""} {
		m, err := svc.GetNotebook(context.Background(), name)
		require.NoError(t, err)
		assert.Equal(t, DefaultNotebook(), m, name)
	}
}

func TestMissingNotFoundPolicy(t *testing.T) {
	svc := newService(MissingNotFound, nil)

	_, err := svc.GetNotebook(context.Background(), "never_saved.ipynb")
	assert.ErrorIs(t, err, ErrNotebookNotFound)
}

func TestDefaultNotebookShape(t *testing.T) {
	m := DefaultNotebook()

	assert.Equal(t, "example.ipynb", m.Name)
	assert.Equal(t, model.DefaultCreated, m.Created)
	assert.Equal(t, model.DefaultModified, m.LastModified)
	assert.Equal(t, len(defaultNotebook), m.Size)

	var nb struct {
		Cells    []json.RawMessage `json:"cells"`
		NBFormat int               `json:"nbformat"`
	}
	require.NoError(t, json.Unmarshal(m.Content, &nb))
	assert.Equal(t, 4, nb.NBFormat)
	assert.NotEmpty(t, nb.Cells)
}

func TestSaveRejectsInvalidJSON(t *testing.T) {
	n := &recordingNotifier{}
	svc := newService(MissingNotFound, n)
	ctx := context.Background()

	_, err := svc.SaveNotebook(ctx, "bad.ipynb", `{"cells":`)
	assert.ErrorIs(t, err, ErrInvalidNotebook)

	_, err = svc.GetNotebook(ctx, "bad.ipynb")
	assert.ErrorIs(t, err, ErrNotebookNotFound, "invalid content must not be stored")
	assert.Empty(t, n.paths)
}

func TestSaveNotifies(t *testing.T) {
	n := &recordingNotifier{}
	svc := newService(MissingDefault, n)

	_, err := svc.SaveNotebook(context.Background(), "a.ipynb", `{}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ipynb"}, n.paths)
}

func TestStorageFailurePropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := NewContentsService(repository.NewContentsRepository(failingStore{err: boom}), MissingDefault, nil)
	ctx := context.Background()

	_, err := svc.GetNotebook(ctx, "a.ipynb")
	assert.ErrorIs(t, err, boom)

	_, err = svc.SaveNotebook(ctx, "a.ipynb", `{}`)
	assert.ErrorIs(t, err, boom)

	_, err = svc.NewUntitled(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestNewUntitledPicksFreeName(t *testing.T) {
	svc := newService(MissingDefault, nil)
	ctx := context.Background()

	first, err := svc.NewUntitled(ctx)
	require.NoError(t, err)
	second, err := svc.NewUntitled(ctx)
	require.NoError(t, err)

	assert.Equal(t, "untitled.ipynb", first.Name)
	assert.Equal(t, "untitled1.ipynb", second.Name)
	assert.JSONEq(t, emptyNotebook, string(second.Content))
	assert.Equal(t, len(emptyNotebook), second.Size)
}

func TestParseMissingPolicy(t *testing.T) {
	p, err := ParseMissingPolicy("default")
	require.NoError(t, err)
	assert.Equal(t, MissingDefault, p)

	p, err = ParseMissingPolicy("not_found")
	require.NoError(t, err)
	assert.Equal(t, MissingNotFound, p)

	_, err = ParseMissingPolicy("maybe")
	assert.Error(t, err)
}
