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

// AttendanceHandler handles class attendance for commissions.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Record godoc
// PUT /api/v1/admin/offerings/:id/attendance
// Stores one class's attendance. Resubmitting a date overwrites it.
func (h *AttendanceHandler) Record(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.RecordAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classDate, err := service.ParseClassDate(req.ClassDate)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"class_date": "class_date debe tener el formato AAAA-MM-DD",
		})
		return
	}

	claims := middleware.GetClaims(c)
	recorder := service.Recorder{
		StaffID:  claims.UserID,
		WriteAll: claims.HasPermission(model.PermissionAttendanceWriteAll),
	}

	if err := h.attendanceService.Record(c.Request.Context(), id, classDate, req.Entries, recorder); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"recorded": len(req.Entries)})
}

// List godoc
// GET /api/v1/admin/offerings/:id/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) List(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	classDate, err := service.ParseClassDate(c.Query("date"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"date": "date debe tener el formato AAAA-MM-DD",
		})
		return
	}

	records, err := h.attendanceService.List(c.Request.Context(), id, classDate)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}
