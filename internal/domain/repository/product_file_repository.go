package repository

import (
	"context"
	"sort"
	"strings"

	"catalog_api/internal/common"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/platform/filestore"
)

type fileProductRepository struct {
	store *filestore.Store
}

func NewFileProductRepository(store *filestore.Store) ProductRepository {
	return &fileProductRepository{store: store}
}

func (r *fileProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	var products []model.Product
	var total int
	err := r.store.View(func(doc *filestore.Document) error {
		products, total = FilterProducts(doc.Products, filter)
		return nil
	})
	return products, total, err
}

func (r *fileProductRepository) FindByID(ctx context.Context, id int) (*model.Product, error) {
	var product *model.Product
	err := r.store.View(func(doc *filestore.Document) error {
		i := doc.ProductIndex(id)
		if i < 0 {
			return common.ErrNotFound
		}
		p := doc.Products[i]
		product = &p
		return nil
	})
	return product, err
}

func (r *fileProductRepository) Create(ctx context.Context, p *model.Product) error {
	return r.store.Update(func(doc *filestore.Document) error {
		p.ID = doc.NextProductID()
		doc.Products = append(doc.Products, *p)
		return nil
	})
}

func (r *fileProductRepository) Update(ctx context.Context, id int, fn func(p *model.Product) error) (*model.Product, error) {
	var updated *model.Product
	err := r.store.Update(func(doc *filestore.Document) error {
		i := doc.ProductIndex(id)
		if i < 0 {
			return common.ErrNotFound
		}
		p := doc.Products[i]
		if err := fn(&p); err != nil {
			return err
		}
		p.ID = id
		doc.Products[i] = p
		updated = &p
		return nil
	})
	return updated, err
}

func (r *fileProductRepository) Delete(ctx context.Context, id int) (*model.Product, error) {
	var removed *model.Product
	err := r.store.Update(func(doc *filestore.Document) error {
		i := doc.ProductIndex(id)
		if i < 0 {
			return common.ErrNotFound
		}
		p := doc.Products[i]
		removed = &p
		doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
		return nil
	})
	return removed, err
}

// FilterProducts applies filter in memory and returns the requested page
// together with the number of matches before paging.
func FilterProducts(all []model.Product, filter model.ProductFilter) ([]model.Product, int) {
	query := strings.ToLower(filter.Query)
	matched := make([]model.Product, 0, len(all))
	for _, p := range all {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Brand != "" && p.Brand != filter.Brand {
			continue
		}
		if query != "" && !productContains(p, query) {
			continue
		}
		matched = append(matched, p)
	}

	less := productLess(filter.Sort)
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.Order == model.SortDesc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	start, end := filter.Window(len(matched))
	return matched[start:end], len(matched)
}

func productContains(p model.Product, query string) bool {
	for _, field := range []string{p.Name, p.Brand, p.Category, p.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func productLess(field string) func(a, b model.Product) bool {
	switch field {
	case "name":
		return func(a, b model.Product) bool { return a.Name < b.Name }
	case "brand":
		return func(a, b model.Product) bool { return a.Brand < b.Brand }
	case "category":
		return func(a, b model.Product) bool { return a.Category < b.Category }
	case "price":
		return func(a, b model.Product) bool { return a.Price < b.Price }
	case "createdAt":
		return func(a, b model.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b model.Product) bool { return a.ID < b.ID }
	}
}
