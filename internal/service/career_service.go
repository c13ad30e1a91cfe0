package service

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
)

type CareerService interface {
	GetAllCareers(ctx context.Context) ([]*model.Career, error)
	CreateCareer(ctx context.Context, code, name string) (*model.Career, error)
	UpdateCareer(ctx context.Context, id int, code, name string) (*model.Career, error)
	DeleteCareer(ctx context.Context, id int) error
}

type careerService struct {
	careerRepo repository.CareerRepository
}

func NewCareerService(careerRepo repository.CareerRepository) CareerService {
	return &careerService{careerRepo: careerRepo}
}

func (s *careerService) GetAllCareers(ctx context.Context) ([]*model.Career, error) {
	return s.careerRepo.GetAll(ctx)
}

func (s *careerService) CreateCareer(ctx context.Context, code, name string) (*model.Career, error) {
	existing, err := s.careerRepo.GetByCode(ctx, code)
	if err == nil && existing != nil {
		return nil, ErrDuplicate
	}

	career := &model.Career{
		Code: code,
		Name: name,
	}
	if err := s.careerRepo.Create(ctx, career); err != nil {
		return nil, writeErr(err)
	}
	return career, nil
}

func (s *careerService) UpdateCareer(ctx context.Context, id int, code, name string) (*model.Career, error) {
	career, err := s.careerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, readErr(err)
	}

	if code != career.Code {
		existing, err := s.careerRepo.GetByCode(ctx, code)
		if err == nil && existing.ID != id {
			return nil, ErrDuplicate
		}
	}
	career.Code = code
	career.Name = name

	if err := s.careerRepo.Update(ctx, career); err != nil {
		return nil, writeErr(err)
	}
	return career, nil
}

// DeleteCareer removes a career. Careers with subjects or students are kept.
func (s *careerService) DeleteCareer(ctx context.Context, id int) error {
	return deleteErr(s.careerRepo.Delete(ctx, id))
}
