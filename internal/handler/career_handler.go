package handler

import (
	"net/http"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/autogestion/autogestion-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

type CareerHandler struct {
	careerService service.CareerService
}

func NewCareerHandler(careerService service.CareerService) *CareerHandler {
	return &CareerHandler{careerService: careerService}
}

func (h *CareerHandler) GetAll(c *gin.Context) {
	careers, err := h.careerService.GetAllCareers(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"careers": careers})
}

func (h *CareerHandler) Create(c *gin.Context) {
	var req model.CareerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	career, err := h.careerService.CreateCareer(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"career": career})
}

func (h *CareerHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.CareerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	career, err := h.careerService.UpdateCareer(c.Request.Context(), id, req.Code, req.Name)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"career": career})
}

func (h *CareerHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.careerService.DeleteCareer(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "career deleted successfully"})
}
