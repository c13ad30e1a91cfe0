package model

import "time"

// Career is a degree programme students belong to.
type Career struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CareerRequest is the payload for creating or updating a career.
type CareerRequest struct {
	Code string `json:"code" binding:"required,min=2,max=16"`
	Name string `json:"name" binding:"required,min=2,max=160"`
}
