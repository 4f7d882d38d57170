package product

import "time"

type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Stock       int       `db:"stock" json:"stock"`
	CreatedBy   *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type UpdateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock" validate:"gte=0"`
}
