package repository

import (
	"context"

	"catalog_api/internal/common"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/platform/filestore"
)

type fileUserRepository struct {
	store *filestore.Store
}

func NewFileUserRepository(store *filestore.Store) UserRepository {
	return &fileUserRepository{store: store}
}

func (r *fileUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	var user *model.User
	err := r.store.View(func(doc *filestore.Document) error {
		i := doc.UserIndex(id)
		if i < 0 {
			return common.ErrNotFound
		}
		u := doc.Users[i]
		user = &u
		return nil
	})
	return user, err
}

func (r *fileUserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.store.View(func(doc *filestore.Document) error {
		users = append(users, doc.Users...)
		return nil
	})
	return users, err
}

func (r *fileUserRepository) Update(ctx context.Context, user *model.User) error {
	return r.store.Update(func(doc *filestore.Document) error {
		i := doc.UserIndex(user.ID)
		if i < 0 {
			return common.ErrNotFound
		}
		doc.Users[i] = *user
		return nil
	})
}
