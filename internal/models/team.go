package models

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TeamRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}
