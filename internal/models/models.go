package models

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"                json:"id"`
	Username     string  `gorm:"uniqueIndex;not null"                    json:"username"`
	PasswordHash string  `gorm:"not null"                                json:"-"`
	Role         Role    `gorm:"type:varchar(16);not null;default:user" json:"role"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"uniqueIndex;not null"     json:"name"`
	Description *string `json:"description"`
	Cost        int64   `gorm:"not null"                 json:"cost"`
	Icon        []byte  `json:"icon"`
}

func (Product) TableName() string {
	return "products"
}

// CartLine exists only while Amount is positive.
type CartLine struct {
	ID        uint `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_user_product;not null" json:"product_id"`
	Amount    int  `gorm:"not null;check:amount > 0"             json:"amount"`
}

func (CartLine) TableName() string {
	return "cart"
}

// CartLineView is a cart line joined with its product. Icon is base64.
type CartLineView struct {
	ID        uint    `json:"id"`
	UserID    uint    `json:"user_id"`
	ProductID uint    `json:"product_id"`
	Amount    int     `json:"amount"`
	Name      string  `json:"name"`
	Cost      int64   `json:"cost"`
	Icon      *string `json:"icon"`
}
