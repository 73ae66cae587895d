package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catalog_api/internal/common"
	"catalog_api/internal/domain/model"
)

// ProductRepository guarantees that Update and Delete are atomic
// read-modify-write operations.
type ProductRepository interface {
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	FindByID(ctx context.Context, id int) (*model.Product, error)
	// Create assigns the new record's ID.
	Create(ctx context.Context, product *model.Product) error
	// Update applies fn to the stored record and persists the result unless fn fails.
	Update(ctx context.Context, id int, fn func(p *model.Product) error) (*model.Product, error)
	// Delete removes the record and returns what was removed.
	Delete(ctx context.Context, id int) (*model.Product, error)
}

type pgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

const productColumns = `id, name, brand, category, price, description, image_filename, created_at`

var productSortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"brand":     "brand",
	"category":  "category",
	"price":     "price",
	"createdAt": "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.Description, &p.ImageFilename, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *pgProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, filter.Category)
		argID++
	}
	if filter.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("brand = $%d", argID))
		args = append(args, filter.Brand)
		argID++
	}
	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%[1]d OR brand ILIKE $%[1]d OR category ILIKE $%[1]d OR description ILIKE $%[1]d)", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.List count: %w", err)
	}

	column, ok := productSortColumns[filter.Sort]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if filter.Order == model.SortDesc {
		direction = "DESC"
	}

	var query strings.Builder
	query.WriteString("SELECT " + productColumns + " FROM products" + whereClause)
	query.WriteString(fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction))
	if start, end := filter.Window(total); start != 0 || end != total {
		query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
		args = append(args, end-start, start)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.List: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgProductRepository.List scan: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *pgProductRepository) FindByID(ctx context.Context, id int) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProductRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) Create(ctx context.Context, p *model.Product) error {
	query := `INSERT INTO products (name, brand, category, price, description, image_filename, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Brand, p.Category, p.Price, p.Description, p.ImageFilename, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("pgProductRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProductRepository) Update(ctx context.Context, id int, fn func(p *model.Product) error) (*model.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgProductRepository.Update begin: %w", err)
	}
	defer tx.Rollback()

	p, err := scanProduct(tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProductRepository.Update select: %w", err)
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.ID = id

	query := `UPDATE products SET name = $2, brand = $3, category = $4, price = $5, description = $6, image_filename = $7
	          WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, p.Name, p.Brand, p.Category, p.Price, p.Description, p.ImageFilename); err != nil {
		return nil, fmt.Errorf("pgProductRepository.Update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgProductRepository.Update commit: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) Delete(ctx context.Context, id int) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "DELETE FROM products WHERE id = $1 RETURNING "+productColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProductRepository.Delete: %w", err)
	}
	return p, nil
}
