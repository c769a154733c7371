package transport

import "github.com/Skotchmaster/shop_api/internal/models"

type RegisterRequest struct {
	Username string      `json:"username" validate:"required,max=64"`
	Password string      `json:"password" validate:"required,max=256"`
	Role     models.Role `json:"role"     validate:"omitempty,oneof=admin user"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

type RegisterResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Role    models.Role `json:"role"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// CartUpdateRequest carries the target amount. Zero or negative removes the line.
type CartUpdateRequest struct {
	ProductID uint `json:"product_id" validate:"required,gt=0"`
	Amount    *int `json:"amount"     validate:"required"`
}

// ProductRequest is a full replacement body. Icon is base64 in JSON.
type ProductRequest struct {
	Name        string  `json:"name"        validate:"required,max=255"`
	Description *string `json:"description"`
	Cost        *int64  `json:"cost"        validate:"required,gte=0"`
	Icon        []byte  `json:"icon"`
}

func (r ProductRequest) Model() models.Product {
	var cost int64
	if r.Cost != nil {
		cost = *r.Cost
	}
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Cost:        cost,
		Icon:        r.Icon,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
