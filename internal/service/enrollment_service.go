package service

import (
	"context"
	"fmt"
	"io"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

// EnrollmentService serves enrollment listings and exports. Status changes
// go through AdmissionService.
type EnrollmentService struct {
	enrollmentRepo *repository.EnrollmentRepository
	offeringRepo   repository.OfferingRepository
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, offeringRepo repository.OfferingRepository) *EnrollmentService {
	return &EnrollmentService{enrollmentRepo: enrollmentRepo, offeringRepo: offeringRepo}
}

// ListForStudent returns the student's enrollments, newest first.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int) ([]model.StudentEnrollment, error) {
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

// ListForOffering returns the enrollments of an offering.
func (s *EnrollmentService) ListForOffering(ctx context.Context, offeringID int, withCancelled bool) ([]model.OfferingEnrollment, error) {
	if _, err := s.offeringRepo.GetByID(ctx, offeringID); err != nil {
		return nil, offeringErr(err)
	}
	return s.enrollmentRepo.ListByOffering(ctx, offeringID, withCancelled)
}

// ExportActa writes the offering's active enrollments as an XLSX sheet and
// returns a download file name.
func (s *EnrollmentService) ExportActa(ctx context.Context, offeringID int, w io.Writer) (string, error) {
	offering, err := s.offeringRepo.GetByID(ctx, offeringID)
	if err != nil {
		return "", offeringErr(err)
	}
	rows, err := s.enrollmentRepo.ListByOffering(ctx, offeringID, false)
	if err != nil {
		return "", err
	}
	if err := WriteActa(w, offering, rows); err != nil {
		return "", err
	}
	return fmt.Sprintf("acta_%d_%s.xlsx", offering.ID, offering.ScheduledAt.Format("20060102")), nil
}

// ActaSheet is the sheet name of exported enrollment sheets.
const ActaSheet = "Acta"

// XLSXContentType is the media type of exported spreadsheets.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var actaHeaders = []string{"Legajo", "Apellido y nombre", "Estado", "Fecha de inscripción"}

// WriteActa renders an enrollment sheet for one offering.
func WriteActa(w io.Writer, offering *model.Offering, rows []model.OfferingEnrollment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ActaSheet); err != nil {
		return err
	}

	kind := "Comisión"
	if offering.Kind == model.OfferingFinalExam {
		kind = "Examen final"
	}
	meta := [][2]interface{}{
		{"Materia", offering.SubjectName},
		{kind, offering.Label},
		{"Fecha", offering.ScheduledAt.Format("02/01/2006 15:04")},
	}
	for i, m := range meta {
		row := i + 1
		f.SetCellValue(ActaSheet, fmt.Sprintf("A%d", row), m[0])
		f.SetCellValue(ActaSheet, fmt.Sprintf("B%d", row), m[1])
	}

	const headerRow = 5
	for i, header := range actaHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(ActaSheet, cell, header)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ActaSheet, "A5", "D5", bold); err != nil {
		return err
	}

	for i, e := range rows {
		row := headerRow + 1 + i
		f.SetCellValue(ActaSheet, fmt.Sprintf("A%d", row), e.Legajo)
		f.SetCellValue(ActaSheet, fmt.Sprintf("B%d", row), e.StudentName)
		f.SetCellValue(ActaSheet, fmt.Sprintf("C%d", row), string(e.Status))
		f.SetCellValue(ActaSheet, fmt.Sprintf("D%d", row), e.CreatedAt.Format("02/01/2006 15:04"))
	}

	if err := f.SetColWidth(ActaSheet, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(ActaSheet, "B", "B", 36); err != nil {
		return err
	}
	if err := f.SetColWidth(ActaSheet, "C", "D", 20); err != nil {
		return err
	}

	return f.Write(w)
}
