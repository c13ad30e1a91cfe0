package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/autogestion/autogestion-backend/internal/middleware"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/autogestion/autogestion-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// EnrollmentHandler serves staff-side enrollment management.
type EnrollmentHandler struct {
	admissionService  *service.AdmissionService
	enrollmentService *service.EnrollmentService
	offeringService   *service.OfferingService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(
	admissionService *service.AdmissionService,
	enrollmentService *service.EnrollmentService,
	offeringService *service.OfferingService,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		admissionService:  admissionService,
		enrollmentService: enrollmentService,
		offeringService:   offeringService,
	}
}

// ListByOffering godoc
// GET /api/v1/admin/offerings/:id/enrollments?include_cancelled=true
// Staff without enrollments:read only see offerings they teach.
func (h *EnrollmentHandler) ListByOffering(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !canSeeOffering(c, h.offeringService, id) {
		return
	}

	withCancelled, _ := strconv.ParseBool(c.DefaultQuery("include_cancelled", "false"))

	enrollments, err := h.enrollmentService.ListForOffering(c.Request.Context(), id, withCancelled)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// Review godoc
// POST /api/v1/admin/enrollments/:id/review
// Records the outcome of a pending enrollment.
func (h *EnrollmentHandler) Review(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.ReviewEnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	reviewer := service.Reviewer{
		StaffID:   claims.UserID,
		ReviewAll: claims.HasPermission(model.PermissionEnrollmentsReviewAll),
	}

	enrollment, err := h.admissionService.ReviewEnrollment(c.Request.Context(), id, req.Decision, reviewer)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Cancel godoc
// DELETE /api/v1/admin/enrollments/:id
// Cancels a pending enrollment on behalf of the student.
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.admissionService.CancelEnrollment(c.Request.Context(), id, service.Requester{Override: true})
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Export godoc
// GET /api/v1/admin/offerings/:id/enrollments/export
// Downloads the offering's active enrollments as an XLSX sheet.
func (h *EnrollmentHandler) Export(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !canSeeOffering(c, h.offeringService, id) {
		return
	}

	var buf bytes.Buffer
	filename, err := h.enrollmentService.ExportActa(c.Request.Context(), id, &buf)
	if err != nil {
		failWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, service.XLSXContentType, buf.Bytes())
}

// canSeeOffering lets holders of enrollments:read through and restricts
// everyone else to offerings they teach. It writes the error response.
func canSeeOffering(c *gin.Context, offerings *service.OfferingService, offeringID int) bool {
	claims := middleware.GetClaims(c)
	if claims.HasPermission(model.PermissionEnrollmentsRead) {
		return true
	}

	offering, err := offerings.GetByID(c.Request.Context(), offeringID)
	if err != nil {
		failWithError(c, err)
		return false
	}
	if !offering.IsProfessor(claims.UserID) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return false
	}
	return true
}
