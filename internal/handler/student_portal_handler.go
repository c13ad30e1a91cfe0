package handler

import (
	"net/http"

	"github.com/autogestion/autogestion-backend/internal/middleware"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/autogestion/autogestion-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// StudentPortalHandler serves the student self-service endpoints.
type StudentPortalHandler struct {
	offeringService     *service.OfferingService
	admissionService    *service.AdmissionService
	availabilityService *service.AvailabilityService
	enrollmentService   *service.EnrollmentService
	attendanceService   *service.AttendanceService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	offeringService *service.OfferingService,
	admissionService *service.AdmissionService,
	availabilityService *service.AvailabilityService,
	enrollmentService *service.EnrollmentService,
	attendanceService *service.AttendanceService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		offeringService:     offeringService,
		admissionService:    admissionService,
		availabilityService: availabilityService,
		enrollmentService:   enrollmentService,
		attendanceService:   attendanceService,
	}
}

// ListOfferings godoc
// GET /api/v1/student/offerings?kind=
// Lists the open commissions and exam sittings of the student's career.
func (h *StudentPortalHandler) ListOfferings(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var q model.OfferingQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	offerings, err := h.offeringService.ListOpenForCareer(c.Request.Context(), claims.CareerID, q.Kind)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// GetAvailability godoc
// GET /api/v1/student/offerings/:id/availability
func (h *StudentPortalHandler) GetAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	avail, err := h.availabilityService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"availability": avail})
}

// RequestEnrollment godoc
// POST /api/v1/student/offerings/:id/enrollments
// Takes a seat in the offering if one is free.
func (h *StudentPortalHandler) RequestEnrollment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	enrollment, avail, err := h.admissionService.RequestEnrollment(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"enrollment":   enrollment,
		"availability": avail,
	})
}

// ListEnrollments godoc
// GET /api/v1/student/enrollments
func (h *StudentPortalHandler) ListEnrollments(c *gin.Context) {
	claims := middleware.GetClaims(c)

	enrollments, err := h.enrollmentService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// CancelEnrollment godoc
// DELETE /api/v1/student/enrollments/:id
// Withdraws one of the student's own pending enrollments.
func (h *StudentPortalHandler) CancelEnrollment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	enrollment, err := h.admissionService.CancelEnrollment(c.Request.Context(), id, service.Requester{StudentID: claims.UserID})
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// GetAttendance godoc
// GET /api/v1/student/attendance
func (h *StudentPortalHandler) GetAttendance(c *gin.Context) {
	claims := middleware.GetClaims(c)

	summary, err := h.attendanceService.StudentSummary(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": summary})
}
