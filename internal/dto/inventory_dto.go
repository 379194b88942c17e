package dto

import "github.com/shopspring/decimal"

type IngredientRequest struct {
	Name        string          `json:"name"         validate:"required,min=1,max=255"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"         validate:"omitempty,max=20"`
	ImportPrice int64           `json:"import_price" validate:"min=0"`
}

type IngredientResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	ImportPrice int64           `json:"import_price"`
}

type GenreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type GenreResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type BookRequest struct {
	Title    string  `json:"title"     validate:"required,min=1,max=255"`
	Author   *string `json:"author"    validate:"omitempty,max=255"`
	Quantity int     `json:"quantity"`
	GenreIDs []uint  `json:"genre_ids" validate:"omitempty,dive,min=1"`
}

type BookResponse struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	Author   *string         `json:"author"`
	Quantity int             `json:"quantity"`
	Genres   []GenreResponse `json:"genres"`
}

// NameFilter is bound from the query string of catalog list endpoints.
type NameFilter struct {
	Search string `form:"search"`
}
