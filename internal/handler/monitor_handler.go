package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams an offering's seat counts and enrollment list to staff.
type MonitorHandler struct {
	offeringService     *service.OfferingService
	availabilityService *service.AvailabilityService
	enrollmentService   *service.EnrollmentService
	log                 zerolog.Logger
}

func NewMonitorHandler(
	offeringService *service.OfferingService,
	availabilityService *service.AvailabilityService,
	enrollmentService *service.EnrollmentService,
	log zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		offeringService:     offeringService,
		availabilityService: availabilityService,
		enrollmentService:   enrollmentService,
		log:                 log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorOfferingSSE godoc
// GET /api/v1/admin/offerings/:id/monitor
// Sends a snapshot, then every availability event published for the offering.
// The enrollment list is re-sent at most every refreshInterval while seats move.
func (h *MonitorHandler) MonitorOfferingSSE(c *gin.Context) {
	offeringID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !canSeeOffering(c, h.offeringService, offeringID) {
		return
	}

	offering, err := h.offeringService.GetByID(c.Request.Context(), offeringID)
	if err != nil {
		failWithError(c, err)
		return
	}

	reqCtx := c.Request.Context()

	// Subscribe before the snapshot so no event falls in between.
	pubsub := h.availabilityService.Subscribe(reqCtx, offeringID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	enrollments, err := h.enrollmentService.ListForOffering(reqCtx, offeringID, false)
	if err != nil {
		h.log.Warn().Err(err).Int("offering_id", offeringID).Msg("Failed to load enrollments for snapshot")
	}
	c.SSEvent("message", gin.H{
		"type":         "snapshot",
		"offering":     offering,
		"availability": offering.Availability(),
		"enrollments":  enrollments,
	})
	c.Writer.Flush()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	// Only refresh the list when seats moved since the last refresh.
	dirty := false

	h.log.Info().Int("offering_id", offeringID).Msg("Staff attached to offering monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Int("offering_id", offeringID).Msg("Staff disconnected from offering monitor SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Events are already JSON; forward as-is.
			writeSSEData(c, []byte(msg.Payload))
			dirty = true

		case <-refreshTicker.C:
			if !dirty {
				continue
			}
			h.sendRefresh(c, reqCtx, offeringID)
			dirty = false

		case <-keepAliveTicker.C:
			writeSSEData(c, pingPayload)
		}
	}
}

// sendRefresh re-reads the offering's enrollments and sends them.
func (h *MonitorHandler) sendRefresh(c *gin.Context, parentCtx context.Context, offeringID int) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	enrollments, err := h.enrollmentService.ListForOffering(ctx, offeringID, false)
	if err != nil {
		h.log.Warn().Err(err).Int("offering_id", offeringID).Msg("Failed to refresh enrollments")
		return
	}

	c.SSEvent("message", gin.H{
		"type":        "enrollments",
		"enrollments": enrollments,
	})
	c.Writer.Flush()
}

func writeSSEData(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
