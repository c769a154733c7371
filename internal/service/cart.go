package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/shop_api/internal/events"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/repo"
)

type CartService struct {
	Notifier
	Repo *repo.GormRepo
}

func NewCartService(r *repo.GormRepo, n Notifier) *CartService {
	return &CartService{Notifier: n, Repo: r}
}

type cartLineChanged struct {
	Username  string `json:"username"`
	ProductID uint   `json:"product_id"`
	Amount    int    `json:"amount"`
}

type cartCleared struct {
	Username string `json:"username"`
	Removed  int64  `json:"removed"`
}

func validateProductID(productID uint) error {
	if productID == 0 {
		return fmt.Errorf("product_id must be positive: %w", ErrValidation)
	}
	return nil
}

// Set applies one cart transition for the user. For amount <= 0 the returned
// view is the removed line; removing an absent line returns repo.ErrNotFound.
func (s *CartService) Set(ctx context.Context, username string, productID uint, amount int) (*models.CartLineView, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	userID, err := s.Repo.UserIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	op, evType := "set", "cart_line_set"
	if amount <= 0 {
		op, evType = "delete", "cart_line_deleted"
	}

	view, err := s.Repo.SetCartLine(ctx, userID, productID, amount)
	if amount <= 0 && errors.Is(err, repo.ErrNotFound) {
		s.Metrics.CartMutation(op, nil)
		return nil, err
	}
	s.Metrics.CartMutation(op, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicCart, username, events.New(evType, cartLineChanged{
		Username:  username,
		ProductID: productID,
		Amount:    max(amount, 0),
	}))
	return view, nil
}

// SetAmount returns the resulting amount, or nil when no line remains.
func (s *CartService) SetAmount(ctx context.Context, username string, productID uint, amount int) (*int, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	userID, err := s.Repo.UserIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	got, err := s.Repo.SetCartAmount(ctx, userID, productID, amount)
	s.Metrics.CartMutation("set_amount", err)
	if err != nil {
		return nil, err
	}

	resulting := 0
	if got != nil {
		resulting = *got
	}
	s.publish(ctx, events.TopicCart, username, events.New("cart_line_set", cartLineChanged{
		Username:  username,
		ProductID: productID,
		Amount:    resulting,
	}))
	return got, nil
}

func (s *CartService) List(ctx context.Context, username string) ([]models.CartLineView, error) {
	userID, err := s.Repo.UserIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, username string) error {
	userID, err := s.Repo.UserIDByUsername(ctx, username)
	if err != nil {
		return err
	}

	removed, err := s.Repo.ClearCart(ctx, userID)
	s.Metrics.CartMutation("clear", err)
	if err != nil {
		return err
	}

	if removed > 0 {
		s.publish(ctx, events.TopicCart, username, events.New("cart_cleared", cartCleared{
			Username: username,
			Removed:  removed,
		}))
	}
	return nil
}
