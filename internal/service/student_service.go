package service

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/autogestion/autogestion-backend/internal/response"
)

// StudentService handles student business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	authService *AuthService
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, authService *AuthService) *StudentService {
	return &StudentService{studentRepo: studentRepo, authService: authService}
}

// GetByLegajo retrieves a student by their file number.
func (s *StudentService) GetByLegajo(ctx context.Context, legajo string) (*model.Student, error) {
	st, err := s.studentRepo.GetByLegajo(ctx, legajo)
	return st, readErr(err)
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	return st, readErr(err)
}

// ListStudents retrieves all students with pagination and optional career filter.
func (s *StudentService) ListStudents(ctx context.Context, careerID *int, page, perPage int) ([]model.Student, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	students, total, err := s.studentRepo.ListPaginated(ctx, careerID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	return students, response.NewPagination(page, perPage, total), nil
}

// Create inserts a new student. The plain password is hashed before storage.
func (s *StudentService) Create(ctx context.Context, student *model.Student, password string) error {
	hashed, err := s.authService.HashPassword(password)
	if err != nil {
		return err
	}
	student.PasswordHash = hashed
	return writeErr(s.studentRepo.Create(ctx, student))
}

// Update modifies a student's details. Updates password if provided.
func (s *StudentService) Update(ctx context.Context, student *model.Student, password string) error {
	// 1. Update basic info
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return writeErr(err)
	}

	// 2. Update password if requested
	if password != "" {
		hashed, err := s.authService.HashPassword(password)
		if err != nil {
			return err
		}
		return s.studentRepo.UpdatePassword(ctx, student.ID, hashed)
	}

	return nil
}

// Delete removes a student by ID.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := deleteErr(s.studentRepo.Delete(ctx, id)); err != nil {
		return err
	}
	return s.authService.ResetStudentSession(ctx, id)
}
