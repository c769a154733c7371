package service

import (
	"context"

	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/repo"
)

const (
	phoneNotSpecified = "not specified"
	membershipRegular = "Regular"
	membershipStaff   = "Staff"
	guestUsername     = "guest"
)

type Profile struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	OrdersCount int    `json:"orders_count"`
	Membership  string `json:"membership"`
}

type ProfileService struct {
	Repo *repo.GormRepo
}

func NewProfileService(r *repo.GormRepo) *ProfileService {
	return &ProfileService{Repo: r}
}

// Profile builds the view from the user row. Orders are not tracked, so
// OrdersCount is always zero.
func (s *ProfileService) Profile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Username:   user.Username,
		Email:      user.Username + "@example.com",
		Phone:      phoneNotSpecified,
		Membership: membershipRegular,
	}
	if user.Email != nil && *user.Email != "" {
		p.Email = *user.Email
	}
	if user.Phone != nil && *user.Phone != "" {
		p.Phone = *user.Phone
	}
	if user.Role == models.RoleAdmin {
		p.Membership = membershipStaff
	}
	return p, nil
}

func GuestProfile() *Profile {
	return &Profile{
		Username:   guestUsername,
		Email:      guestUsername + "@example.com",
		Phone:      phoneNotSpecified,
		Membership: membershipRegular,
	}
}
