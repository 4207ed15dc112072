package services

import (
	"errors"

	"elpunto/internal/models"
	"elpunto/internal/repositories"
)

// ProductService handles read access to the store's products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, persistenceError("list products", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID. A missing product is
// reported as ErrNotFound.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, persistenceError("get product", err)
	}
	return product, nil
}

// LatestProducts returns up to limit of the newest products.
func (s *ProductService) LatestProducts(limit int) ([]models.Product, error) {
	products, err := s.repo.Latest(limit)
	if err != nil {
		return nil, persistenceError("list latest products", err)
	}
	return products, nil
}
