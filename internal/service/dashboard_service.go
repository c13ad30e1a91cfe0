package service

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
)

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	TotalStudents          int                                `json:"total_students"`
	TotalCareers           int                                `json:"total_careers"`
	TotalSubjects          int                                `json:"total_subjects"`
	OfferingKindCounts     map[model.OfferingKind]int         `json:"offering_kind_counts"`
	EnrollmentStatusCounts map[model.EnrollmentStatus]int     `json:"enrollment_status_counts"`
	UpcomingExams          []repository.DashboardUpcomingExam `json:"upcoming_exams"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo           *repository.DashboardRepository
	enrollmentRepo *repository.EnrollmentRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, enrollmentRepo *repository.EnrollmentRepository) *DashboardService {
	return &DashboardService{repo: repo, enrollmentRepo: enrollmentRepo}
}

// GetDashboardData fetches all dashboard metrics.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	students, careers, subjects, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	kindCounts, err := s.repo.GetOfferingKindCounts(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.enrollmentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range model.AllEnrollmentStatuses {
		if _, ok := statusCounts[st]; !ok {
			statusCounts[st] = 0
		}
	}

	upcoming, err := s.repo.GetUpcomingExams(ctx, 5)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		TotalStudents:          students,
		TotalCareers:           careers,
		TotalSubjects:          subjects,
		OfferingKindCounts:     kindCounts,
		EnrollmentStatusCounts: statusCounts,
		UpcomingExams:          upcoming,
	}

	return data, nil
}
