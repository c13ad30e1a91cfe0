package model

import "time"

// Student represents a student user.
type Student struct {
	ID           int       `json:"id"`
	Legajo       string    `json:"legajo"`
	DNI          string    `json:"dni"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CareerID     int       `json:"career_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	Legajo   string `json:"legajo" binding:"required,legajo"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// CreateStudentRequest is the payload for creating a new student account.
type CreateStudentRequest struct {
	Legajo   string `json:"legajo" binding:"required,legajo"`
	DNI      string `json:"dni" binding:"required,numeric,min=7,max=9"`
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	CareerID int    `json:"career_id" binding:"required,gt=0"`
}

// UpdateStudentRequest is the payload for updating an existing student.
type UpdateStudentRequest struct {
	Legajo   string `json:"legajo" binding:"required,legajo"`
	DNI      string `json:"dni" binding:"required,numeric,min=7,max=9"`
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	CareerID int    `json:"career_id" binding:"required,gt=0"`
}
