package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultOrderStatus = "Pending"

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"  json:"categoryId"`
	Name string `gorm:"not null"                  json:"name"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"      json:"productId"`
	Name        string          `gorm:"not null"                      json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0"     json:"stock"`
	CategoryID  *uint           `gorm:"index"                         json:"categoryId"`
	Version     int             `gorm:"not null"                      json:"version"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"      json:"orderId"`
	UserID          uint            `gorm:"index;not null"                json:"userId"`
	ProductID       uint            `gorm:"index;not null"                json:"productId"`
	Quantity        int             `gorm:"not null;check:quantity > 0"   json:"quantity"`
	ShippingAddress string          `json:"shippingAddress"`
	OrderDate       time.Time       `gorm:"not null"                      json:"orderDate"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"totalAmount"`
	Status          string          `gorm:"not null"                      json:"status"`
	Version         int             `gorm:"not null"                      json:"version"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"                      json:"cartItemId"`
	UserID    uint `gorm:"uniqueIndex:idx_user_product;not null"         json:"userId"`
	ProductID uint `gorm:"uniqueIndex:idx_user_product;not null"         json:"productId"`
	Quantity  int  `gorm:"not null;check:quantity > 0"                   json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"  json:"userId"`
	FirstName string `gorm:"not null"                  json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName is what order listings show for the user.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func All() []any {
	return []any{&Category{}, &Product{}, &Order{}, &CartItem{}, &User{}}
}
