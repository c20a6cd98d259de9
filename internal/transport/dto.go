package transport

import "github.com/shopspring/decimal"

type CategoryRequest struct {
	Name string `json:"name"`
}

// ProductRequest replaces every editable product field. Version, when sent,
// must match the stored row.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *uint           `json:"categoryId"`
	Version     *int            `json:"version"`
}

type PlaceOrderRequest struct {
	ProductID       uint   `json:"productId"`
	Quantity        int    `json:"quantity"`
	UserID          uint   `json:"userId"`
	ShippingAddress string `json:"shippingAddress"`
	Status          string `json:"status"`
}

// UpdateOrderRequest is a partial update; absent or zero fields keep their value.
type UpdateOrderRequest struct {
	ProductID       *uint   `json:"productId"`
	Quantity        *int    `json:"quantity"`
	ShippingAddress *string `json:"shippingAddress"`
	Status          *string `json:"status"`
}

type AddToCartRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type UserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type SearchResponse struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Size     int   `json:"size"`
	Products any   `json:"products"`
}
