package service

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/rs/zerolog"
)

type SubjectService struct {
	subjectRepo *repository.SubjectRepository
	log         zerolog.Logger
}

func NewSubjectService(subjectRepo *repository.SubjectRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *SubjectService) List(ctx context.Context, careerID *int) ([]model.Subject, error) {
	return s.subjectRepo.List(ctx, careerID)
}

func (s *SubjectService) Create(ctx context.Context, sub *model.Subject) error {
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		return writeErr(err)
	}
	s.log.Info().Int("subject_id", sub.ID).Str("code", sub.Code).Msg("Subject created")
	return nil
}

func (s *SubjectService) Update(ctx context.Context, sub *model.Subject) error {
	return writeErr(s.subjectRepo.Update(ctx, sub))
}

func (s *SubjectService) Delete(ctx context.Context, id int) error {
	return deleteErr(s.subjectRepo.Delete(ctx, id))
}
