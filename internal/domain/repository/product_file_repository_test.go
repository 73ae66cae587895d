package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"catalog_api/internal/common"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/platform/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRepos(t *testing.T) (ProductRepository, UserRepository, *filestore.Store) {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return NewFileProductRepository(store), NewFileUserRepository(store), store
}

func seedProducts(t *testing.T, repo ProductRepository) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []model.Product{
		{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 9.99, Description: "A nice ceramic mug"},
		{Name: "Kettle", Brand: "Acme", Category: "Kitchen", Price: 39.5, Description: "Boils water quickly"},
		{Name: "Lamp", Brand: "Lumo", Category: "Living", Price: 25, Description: "Warm reading light"},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(context.Background(), &p))
		assert.Equal(t, i+1, p.ID)
	}
}

func TestFileProductRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newFileRepos(t)
	seedProducts(t, repo)

	p, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", p.Name)

	updated, err := repo.Update(ctx, 2, func(p *model.Product) error {
		p.Price = 35
		p.ID = 99 // ids are immutable
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ID)
	assert.Equal(t, 35.0, updated.Price)

	removed, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mug", removed.Name)

	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// ids are never reused below the current maximum
	next := model.Product{Name: "Rug"}
	require.NoError(t, repo.Create(ctx, &next))
	assert.Equal(t, 4, next.ID)
}

func TestFileProductRepositoryMissingRecords(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newFileRepos(t)

	_, err := repo.Delete(ctx, 9999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	called := false
	_, err = repo.Update(ctx, 9999, func(p *model.Product) error { called = true; return nil })
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.False(t, called)
}

func TestFileProductRepositoryUpdateAbortsOnCallbackError(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newFileRepos(t)
	seedProducts(t, repo)

	boom := errors.New("rejected")
	_, err := repo.Update(ctx, 1, func(p *model.Product) error {
		p.Name = "Changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
}

func TestFilterProducts(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newFileRepos(t)
	seedProducts(t, repo)

	tests := []struct {
		name      string
		filter    model.ProductFilter
		wantNames []string
		wantTotal int
	}{
		{"all", model.ProductFilter{}, []string{"Mug", "Kettle", "Lamp"}, 3},
		{"category", model.ProductFilter{Category: "Kitchen"}, []string{"Mug", "Kettle"}, 2},
		{"brand", model.ProductFilter{Brand: "Lumo"}, []string{"Lamp"}, 1},
		{"query", model.ProductFilter{Query: "WATER"}, []string{"Kettle"}, 1},
		{"sort price desc", model.ProductFilter{Sort: "price", Order: "desc"}, []string{"Kettle", "Lamp", "Mug"}, 3},
		{"sort name", model.ProductFilter{Sort: "name"}, []string{"Kettle", "Lamp", "Mug"}, 3},
		{"page 2", model.ProductFilter{Page: 2, Limit: 2}, []string{"Lamp"}, 3},
		{"page past end", model.ProductFilter{Page: 5, Limit: 2}, []string{}, 3},
		{"huge page", model.ProductFilter{Page: 100000000000000000, Limit: 100}, []string{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(products))
			for _, p := range products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestFileUserRepository(t *testing.T) {
	ctx := context.Background()
	_, users, store := newFileRepos(t)

	require.NoError(t, store.Update(func(doc *filestore.Document) error {
		doc.Users = []model.User{{ID: 1, Name: "ann", HashedPassword: "plain"}}
		return nil
	}))

	u, err := users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Name)

	u.Role = model.RoleAdmin
	require.NoError(t, users.Update(ctx, u))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.RoleAdmin, all[0].Role)

	_, err = users.FindByID(ctx, 2)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, users.Update(ctx, &model.User{ID: 2}), common.ErrNotFound)
}
