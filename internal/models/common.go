package models

type PageRequest struct {
	Page     int
	PageSize int
}

// Listing is one page of a collection as produced by the services.
type Listing[T any] struct {
	Items []T
	Total int64
	Page  PageRequest
}

type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

type PingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
