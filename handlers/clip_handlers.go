package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"clipforge/internal/store"
	"clipforge/utils"
)

// ListJobClips retrieves the clips for one job, oldest first, regardless
// of their status. Failed clips appear with their processing_error so a
// client can show partial results.
// GET /api/v1/jobs/:jobId/clips
func (h *ApplicationHandler) ListJobClips(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	// Confirm the job exists so a bad id gets 404 rather than an empty list.
	if _, err := h.Store.GetJob(c.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		h.Logger.WithFields(map[string]interface{}{
			"job_id": jobID.String(),
			"error":  err.Error(),
		}).Error("job fetch failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve job")
	}

	clips, err := h.Store.ListClips(c.Context(), jobID)
	if err != nil {
		h.Logger.WithFields(map[string]interface{}{
			"job_id": jobID.String(),
			"error":  err.Error(),
		}).Error("clip list failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve clips")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, clips)
}
