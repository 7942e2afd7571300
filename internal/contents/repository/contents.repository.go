package repository

import (
	"context"

	"nbcontents/pkg/logger"
	"nbcontents/store"
)

type ContentsRepository struct {
	Store store.Connector
}

func NewContentsRepository(s store.Connector) *ContentsRepository {
	return &ContentsRepository{Store: s}
}

// Get returns the stored notebook, or nil if name was never saved.
func (r *ContentsRepository) Get(ctx context.Context, name string) (*store.Record, error) {
	rec, err := r.Store.Fetch(ctx, name)
	if err != nil {
		logger.Sugar.Errorf("Failed to fetch notebook %q: %v", name, err)
	}
	return rec, err
}

func (r *ContentsRepository) Put(ctx context.Context, name, raw string) error {
	err := r.Store.Save(ctx, name, raw)
	if err != nil {
		logger.Sugar.Errorf("Failed to save notebook %q: %v", name, err)
	}
	return err
}

func (r *ContentsRepository) Exists(ctx context.Context, name string) (bool, error) {
	rec, err := r.Get(ctx, name)
	return rec != nil, err
}
