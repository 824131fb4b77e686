package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	TeamID       *int64     `json:"team"`
	IsStaff      bool       `json:"is_staff"`
	IsActive     bool       `json:"is_active"`
	IsSuperuser  bool       `json:"-"`
	PasswordHash string     `json:"-"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=128"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Team      *int64 `json:"team" validate:"omitempty,gt=0"`
}

// UserUpdateRequest carries PUT and PATCH bodies. Nil fields were absent
// from the request.
type UserUpdateRequest struct {
	Email     *string    `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string    `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string    `json:"last_name" validate:"omitempty,max=150"`
	Team      OptionalID `json:"team"`
	IsActive  *bool      `json:"is_active"`
	IsStaff   *bool      `json:"is_staff"`
	Password  *string    `json:"password" validate:"omitempty,max=128"`
}

type UserFilter struct {
	Search string
	TeamID *int64
}

// OptionalID tells an absent JSON field apart from an explicit null.
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}
