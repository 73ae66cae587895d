package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"catalog_api/internal/app/validator"
	"catalog_api/internal/common"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/domain/repository"
	"catalog_api/internal/platform/logger"
	"catalog_api/internal/platform/metrics"
)

// ImageStorage is implemented by upload.ImageStore.
type ImageStorage interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(filename string) error
}

type ProductService struct {
	productRepo repository.ProductRepository
	images      ImageStorage
	now         func() time.Time
}

func NewProductService(productRepo repository.ProductRepository, images ImageStorage) *ProductService {
	return &ProductService{productRepo: productRepo, images: images, now: time.Now}
}

// ProductInput is a candidate payload as received from a form or JSON body.
// Fields holds only the client-writable product fields that were supplied.
type ProductInput struct {
	Fields map[string]string
	Image  *multipart.FileHeader
}

func (s *ProductService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	return s.productRepo.List(ctx, filter)
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (product *model.Product, err error) {
	defer func() { metrics.ProductMutations.WithLabelValues("create", metrics.Outcome(err)).Inc() }()

	fields := normalize(in.Fields)
	if errs := validator.ValidateProduct(fields, validator.ModeCreate); len(errs) > 0 {
		return nil, common.NewValidationError(errs)
	}
	price, _ := validator.ParsePrice(fields[validator.FieldPrice])

	product = &model.Product{
		Name:        fields[validator.FieldName],
		Brand:       fields[validator.FieldBrand],
		Category:    fields[validator.FieldCategory],
		Price:       price,
		Description: fields[validator.FieldDescription],
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}

	if in.Image != nil {
		filename, err := s.images.Save(in.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		product.ImageFilename = filename
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.discardImage(product.ImageFilename)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.WithFields(map[string]any{"product_id": product.ID}).Info("product created")
	return product, nil
}

// UpdateProduct applies only the supplied fields. id and createdAt never change.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, in ProductInput) (product *model.Product, err error) {
	defer func() { metrics.ProductMutations.WithLabelValues("update", metrics.Outcome(err)).Inc() }()

	fields := normalize(in.Fields)
	if errs := validator.ValidateProduct(fields, validator.ModeUpdate); len(errs) > 0 {
		return nil, common.NewValidationError(errs)
	}

	newImage := ""
	if in.Image != nil {
		newImage, err = s.images.Save(in.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
	}

	oldImage := ""
	product, err = s.productRepo.Update(ctx, id, func(p *model.Product) error {
		applyFields(p, fields)
		if newImage != "" {
			oldImage = p.ImageFilename
			p.ImageFilename = newImage
		}
		return nil
	})
	if err != nil {
		s.discardImage(newImage)
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.discardImage(oldImage)
	logger.WithFields(map[string]any{"product_id": id}).Info("product updated")
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) (err error) {
	defer func() { metrics.ProductMutations.WithLabelValues("delete", metrics.Outcome(err)).Inc() }()

	removed, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.discardImage(removed.ImageFilename)
	logger.WithFields(map[string]any{"product_id": id}).Info("product deleted")
	return nil
}

// discardImage removes an image that is no longer referenced. Failures are
// logged; the sweeper catches anything left behind.
func (s *ProductService) discardImage(filename string) {
	if filename == "" {
		return
	}
	if err := s.images.Remove(filename); err != nil {
		logger.WithError(err).WithField("image", filename).Warn("failed to remove image")
	}
}

func normalize(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for _, name := range validator.ProductFields {
		if v, ok := in[name]; ok {
			out[name] = strings.TrimSpace(v)
		}
	}
	return out
}

func applyFields(p *model.Product, fields map[string]string) {
	for name, value := range fields {
		switch name {
		case validator.FieldName:
			p.Name = value
		case validator.FieldBrand:
			p.Brand = value
		case validator.FieldCategory:
			p.Category = value
		case validator.FieldDescription:
			p.Description = value
		case validator.FieldPrice:
			if price, err := validator.ParsePrice(value); err == nil {
				p.Price = price
			}
		}
	}
}
