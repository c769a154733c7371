package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/shop_api/internal/events"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/pagination"
	"github.com/Skotchmaster/shop_api/internal/repo"
)

type CatalogService struct {
	Notifier
	Repo *repo.GormRepo
}

func NewCatalogService(r *repo.GormRepo, n Notifier) *CatalogService {
	return &CatalogService{Notifier: n, Repo: r}
}

type productChanged struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Cost      int64  `json:"cost,omitempty"`
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if p.Cost < 0 {
		return fmt.Errorf("cost cannot be negative: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) ListPage(ctx context.Context, p pagination.Page) ([]models.Product, error) {
	return s.Repo.ListProductsPage(ctx, p)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	p.ID = 0
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicProduct, strconv.FormatUint(uint64(p.ID), 10), events.New("product_created", productChanged{
		ProductID: p.ID, Name: p.Name, Cost: p.Cost,
	}))
	return &p, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	updated, err := s.Repo.UpdateProduct(ctx, id, p)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicProduct, strconv.FormatUint(uint64(id), 10), events.New("product_updated", productChanged{
		ProductID: updated.ID, Name: updated.Name, Cost: updated.Cost,
	}))
	return updated, nil
}

// Delete returns repo.ErrNotFound when no product had the id.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("delete product %d: %w", id, repo.ErrNotFound)
	}

	s.publish(ctx, events.TopicProduct, strconv.FormatUint(uint64(id), 10), events.New("product_deleted", productChanged{
		ProductID: id,
	}))
	return nil
}
