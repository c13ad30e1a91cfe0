package handler

import (
	"net/http"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/autogestion/autogestion-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// OfferingHandler handles commission and exam sitting management.
type OfferingHandler struct {
	offeringService *service.OfferingService
}

// NewOfferingHandler creates a new OfferingHandler.
func NewOfferingHandler(offeringService *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{offeringService: offeringService}
}

// List godoc
// GET /api/v1/admin/offerings?kind=&subject_id=&career_id=
func (h *OfferingHandler) List(c *gin.Context) {
	var q model.OfferingQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	filter := model.OfferingFilter{Kind: q.Kind}

	var ok bool
	if filter.SubjectID, ok = optionalQueryID(c, "subject_id"); !ok {
		return
	}
	if filter.CareerID, ok = optionalQueryID(c, "career_id"); !ok {
		return
	}

	offerings, err := h.offeringService.List(c.Request.Context(), filter)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// Get godoc
// GET /api/v1/admin/offerings/:id
func (h *OfferingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	offering, err := h.offeringService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"offering": offering})
}

// Create godoc
// POST /api/v1/admin/offerings
func (h *OfferingHandler) Create(c *gin.Context) {
	var req model.CreateOfferingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	offering, err := h.offeringService.Create(c.Request.Context(), req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"offering": offering})
}

// Update godoc
// PUT /api/v1/admin/offerings/:id
// Capacity is frozen once the offering has enrollments.
func (h *OfferingHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateOfferingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	offering, err := h.offeringService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"offering": offering})
}

// Delete godoc
// DELETE /api/v1/admin/offerings/:id
func (h *OfferingHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.offeringService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "offering deleted successfully"})
}
