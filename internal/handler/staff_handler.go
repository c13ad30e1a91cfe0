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

// StaffHandler manages professor and administrator accounts.
type StaffHandler struct {
	staffService *service.StaffService
}

func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// List godoc
// GET /api/v1/admin/staff?role_id=&page=&per_page=
func (h *StaffHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	roleID, ok := optionalQueryID(c, "role_id")
	if !ok {
		return
	}

	staff, pagination, err := h.staffService.List(c.Request.Context(), roleID, page, perPage)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"staff": staff}, pagination)
}

// Create godoc
// POST /api/v1/admin/staff
func (h *StaffHandler) Create(c *gin.Context) {
	var req model.CreateStaffRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	staff, err := h.staffService.Create(c.Request.Context(), req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"staff": staff})
}

// Update godoc
// PUT /api/v1/admin/staff/:id
// An empty password keeps the current one.
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStaffRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	staff, err := h.staffService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"staff": staff})
}

// Delete godoc
// DELETE /api/v1/admin/staff/:id
func (h *StaffHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Prevent locking yourself out.
	if claims := middleware.GetClaims(c); claims != nil && claims.UserID == id {
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
		return
	}

	if err := h.staffService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "staff deleted successfully"})
}
