package customers

import "time"

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type CreateCustomerRequest struct {
	Name           string  `json:"name" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	AlternatePhone *string `json:"alternate_phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	ReferredBy     *string `json:"referred_by,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	AlternatePhone *string `json:"alternate_phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	ReferredBy     *string `json:"referred_by,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type CustomerSearchQuery struct {
	Search *string // 名前・電話番号の部分一致
	City   *string
}

type CustomerResponse struct {
	CustomerID     int64     `json:"customer_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	AlternatePhone *string   `json:"alternate_phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Address        *string   `json:"address,omitempty"`
	City           *string   `json:"city,omitempty"`
	ReferredBy     *string   `json:"referred_by,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
