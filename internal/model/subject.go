package model

import "time"

// Subject is a course (materia) of a career's curriculum.
type Subject struct {
	ID        int       `json:"id"`
	CareerID  int       `json:"career_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	CareerID int    `json:"career_id" binding:"required,gt=0"`
	Code     string `json:"code" binding:"required,min=2,max=16"`
	Name     string `json:"name" binding:"required,min=2,max=160"`
	Year     int    `json:"year" binding:"required,min=1,max=6"`
}
