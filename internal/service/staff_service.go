package service

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/autogestion/autogestion-backend/internal/response"
)

// StaffService handles professor and administrator accounts.
type StaffService struct {
	staffRepo   *repository.StaffRepository
	roleRepo    *repository.RoleRepository
	authService *AuthService
}

// NewStaffService creates a new StaffService.
func NewStaffService(staffRepo *repository.StaffRepository, roleRepo *repository.RoleRepository, authService *AuthService) *StaffService {
	return &StaffService{staffRepo: staffRepo, roleRepo: roleRepo, authService: authService}
}

// GetByEmail retrieves a staff member by email.
func (s *StaffService) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	a, err := s.staffRepo.GetByEmail(ctx, email)
	return a, readErr(err)
}

// GetByID retrieves a staff member by ID.
func (s *StaffService) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	a, err := s.staffRepo.GetByID(ctx, id)
	return a, readErr(err)
}

// GetPermissions retrieves permission codes for a role.
func (s *StaffService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
}

// List retrieves a page of staff members.
func (s *StaffService) List(ctx context.Context, roleID *int, page, perPage int) ([]model.Staff, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	list, total, err := s.staffRepo.List(ctx, roleID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return list, response.NewPagination(page, perPage, total), nil
}

// Create creates a staff account with a hashed password.
func (s *StaffService) Create(ctx context.Context, req model.CreateStaffRequest) (*model.Staff, error) {
	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	a := &model.Staff{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		RoleID:       req.RoleID,
	}
	if err := s.staffRepo.Create(ctx, a); err != nil {
		return nil, writeErr(err)
	}
	return s.GetByID(ctx, a.ID)
}

// Update modifies a staff account. An empty password keeps the current one.
func (s *StaffService) Update(ctx context.Context, id int, req model.UpdateStaffRequest) (*model.Staff, error) {
	if req.RoleID != model.SystemRoleAdministrator {
		if err := s.keepOneAdministrator(ctx, id); err != nil {
			return nil, err
		}
	}

	a := &model.Staff{
		ID:     id,
		Email:  req.Email,
		Name:   req.Name,
		RoleID: req.RoleID,
	}
	if req.Password != "" {
		hash, err := s.authService.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = hash
	}

	if err := s.staffRepo.Update(ctx, a); err != nil {
		return nil, writeErr(err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a staff account. Offerings they taught keep no professor.
func (s *StaffService) Delete(ctx context.Context, id int) error {
	if err := s.keepOneAdministrator(ctx, id); err != nil {
		return err
	}
	return deleteErr(s.staffRepo.Delete(ctx, id))
}

// keepOneAdministrator rejects removing the administrator role from the last
// staff member holding it.
func (s *StaffService) keepOneAdministrator(ctx context.Context, id int) error {
	current, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return readErr(err)
	}
	if current.RoleID != model.SystemRoleAdministrator {
		return nil
	}

	n, err := s.staffRepo.CountByRole(ctx, model.SystemRoleAdministrator)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdministrator
	}
	return nil
}
