package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"nbcontents/internal/contents/model"
	"nbcontents/internal/contents/repository"
	"nbcontents/store"
)

var (
	ErrInvalidNotebook  = errors.New("notebook content is not valid JSON")
	ErrNotebookNotFound = errors.New("notebook not found")
)

// MissingPolicy decides what GetNotebook answers for a file that was never saved.
type MissingPolicy int

const (
	// MissingDefault serves the bundled example notebook.
	MissingDefault MissingPolicy = iota
	MissingNotFound
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

//go:embed default.ipynb
var defaultNotebook string

const emptyNotebook = `{"metadata":{"orig_nbformat":4,"kernelspec":{"name":"p5.js","display_name":"p5.js"},` +
	`"language_info":{"codemirror_mode":{"name":"javascript","version":3},"file_extension":".js",` +
	`"mimetype":"text/javascript","name":"javascript","nbconvert_exporter":"javascript",` +
	`"pygments_lexer":"javascript","version":"es2017"}},"nbformat_minor":4,"nbformat":4,"cells":[]}`

// Notifier is told about every successful save.
type Notifier interface {
	Publish(path string, m *model.ContentModel)
}

type ContentsService struct {
	Repo      *repository.ContentsRepository
	OnMissing MissingPolicy
	Notifier  Notifier
}

func NewContentsService(repo *repository.ContentsRepository, onMissing MissingPolicy, notifier Notifier) *ContentsService {
	return &ContentsService{Repo: repo, OnMissing: onMissing, Notifier: notifier}
}

// DefaultNotebook is the starter document served for unknown files.
func DefaultNotebook() *model.ContentModel {
	return bundledModel("example.ipynb", defaultNotebook)
}

func bundledModel(name, raw string) *model.ContentModel {
	return &model.ContentModel{
		Name:         name,
		Path:         name,
		LastModified: model.DefaultModified,
		Created:      model.DefaultCreated,
		Content:      json.RawMessage(raw),
		Format:       model.FormatJSON,
		Mimetype:     "",
		Size:         len(raw),
		Writable:     true,
		Type:         model.TypeNotebook,
	}
}

func (s *ContentsService) Checkpoints() []model.Checkpoint {
	return model.DefaultCheckpoints()
}

// GetNotebook returns the stored notebook, or applies the missing policy.
func (s *ContentsService) GetNotebook(ctx context.Context, name string) (*model.ContentModel, error) {
	rec, err := s.Repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if s.OnMissing == MissingNotFound {
			return nil, fmt.Errorf("%w: %q", ErrNotebookNotFound, name)
		}
		return DefaultNotebook(), nil
	}
	return recordModel(rec)
}

func recordModel(rec *store.Record) (*model.ContentModel, error) {
	if !json.Valid([]byte(rec.Value)) {
		return nil, fmt.Errorf("stored notebook %q: %w", rec.Key, ErrInvalidNotebook)
	}
	return &model.ContentModel{
		Name:         rec.Key,
		Path:         rec.Key,
		LastModified: rec.LastModified.UTC().Format(timeLayout),
		Created:      rec.Created.UTC().Format(timeLayout),
		Content:      json.RawMessage(rec.Value),
		Format:       model.FormatJSON,
		Mimetype:     "",
		Size:         len(rec.Value),
		Writable:     true,
		Type:         model.TypeNotebook,
	}, nil
}

// SaveNotebook stores raw under name and returns the model read back from storage.
func (s *ContentsService) SaveNotebook(ctx context.Context, name, raw string) (*model.ContentModel, error) {
	if !json.Valid([]byte(raw)) {
		return nil, ErrInvalidNotebook
	}
	if err := s.Repo.Put(ctx, name, raw); err != nil {
		return nil, err
	}

	m, err := s.GetNotebook(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		s.Notifier.Publish(name, m)
	}
	return m, nil
}

// NewUntitled saves an empty notebook under the first free untitled name.
func (s *ContentsService) NewUntitled(ctx context.Context) (*model.ContentModel, error) {
	for i := 0; ; i++ {
		name := "untitled.ipynb"
		if i > 0 {
			name = fmt.Sprintf("untitled%d.ipynb", i)
		}
		exists, err := s.Repo.Exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return s.SaveNotebook(ctx, name, emptyNotebook)
		}
	}
}

// ParseMissingPolicy maps the ON_MISSING setting onto a policy.
func ParseMissingPolicy(v string) (MissingPolicy, error) {
	switch v {
	case "", "default":
		return MissingDefault, nil
	case "not_found":
		return MissingNotFound, nil
	}
	return MissingDefault, fmt.Errorf("unknown missing policy %q", v)
}
