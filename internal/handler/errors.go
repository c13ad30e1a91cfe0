package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// busyRetryAfter is the Retry-After hint sent with BUSY responses.
const busyRetryAfter = 2 * time.Second

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// errorMappings translates service sentinels into API errors. Order matters
// only for errors that wrap one another.
var errorMappings = []errorMapping{
	{service.ErrOfferingNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrEnrollmentNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrStudentNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrNotFound, http.StatusNotFound, response.ErrNotFound},

	{service.ErrOfferingClosed, http.StatusConflict, response.ErrOfferingClosed},
	{service.ErrAlreadyEnrolled, http.StatusConflict, response.ErrAlreadyEnrolled},
	{service.ErrSeatsExhausted, http.StatusConflict, response.ErrSeatsExhausted},
	{service.ErrNotCancelable, http.StatusConflict, response.ErrNotCancelable},
	{service.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidTransition},
	{service.ErrCapacityLocked, http.StatusConflict, response.ErrCapacityLocked},
	{service.ErrInvalidDecision, http.StatusBadRequest, response.ErrInvalidDecision},
	{service.ErrNotEnrolled, http.StatusBadRequest, response.ErrNotEnrolled},
	{service.ErrNotCommission, http.StatusConflict, response.ErrActionForbidden},

	{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
	{service.ErrSystemRole, http.StatusForbidden, response.ErrActionForbidden},
	{service.ErrLastAdministrator, http.StatusConflict, response.ErrActionForbidden},

	{service.ErrDuplicate, http.StatusConflict, response.ErrConflict},
	{service.ErrDependencyExists, http.StatusConflict, response.ErrDependencyExists},
	{service.ErrInvalidReference, http.StatusBadRequest, response.ErrInvalidPayload},
}

// failWithError writes the API error matching err. Unknown errors become a
// 500 and are attached to the context for the request logger.
func failWithError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrBusy) {
		response.FailRetryAfter(c, http.StatusServiceUnavailable, response.ErrBusy, busyRetryAfter)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// paramID parses a positive integer path parameter. It writes INVALID_ID and
// returns false when the parameter is malformed.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional positive integer query parameter.
func optionalQueryID(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}
	return &id, true
}

// pageParams reads page and per_page with the listing defaults.
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return page, perPage
}
