package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"clipforge/internal/store"
	"clipforge/models"
	"clipforge/utils"
)

// CreateJobRequest defines the expected request body for creating a job.
// Only the name and source URL are required; everything else has a
// serviceable default.
type CreateJobRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	SourceVideoURL string  `json:"source_video_url" validate:"required,url"`
	UserID         *string `json:"user_id,omitempty" validate:"omitempty,uuid4"`

	TargetFormat   string `json:"target_format" validate:"omitempty,oneof=vertical square horizontal"`
	TargetDuration int    `json:"target_duration_seconds" validate:"omitempty,min=5,max=120"`
	MaxClips       int    `json:"max_clips" validate:"omitempty,min=1,max=10"`

	AddCaptions  bool    `json:"add_captions"`
	CaptionStyle *string `json:"caption_style,omitempty" validate:"omitempty,oneof=bold clean neon subtle"`

	Industry       *string `json:"industry,omitempty"`
	ProductContext *string `json:"product_context,omitempty"`
	TargetAudience *string `json:"target_audience,omitempty"`
}

// CreateJob accepts a new clip-generation job and kicks off background
// processing. The response carries the pending job record immediately;
// clients poll GET /jobs/:id for progress.
// POST /api/v1/jobs
func (h *ApplicationHandler) CreateJob(c *fiber.Ctx) error {
	req := new(CreateJobRequest)
	if err := c.BodyParser(req); err != nil {
		h.Logger.WithField("error", err.Error()).Warn("unparseable job payload")
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse job JSON: %v", err))
	}

	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	job := models.Job{
		Name:           utils.SanitizeInput(req.Name),
		SourceVideoURL: req.SourceVideoURL,
		TargetFormat:   models.FormatVertical,
		TargetDuration: 30,
		MaxClips:       3,
		AddCaptions:    req.AddCaptions,
		CaptionStyle:   req.CaptionStyle,
		Industry:       req.Industry,
		ProductContext: req.ProductContext,
		TargetAudience: req.TargetAudience,
		Status:         models.JobStatusPending,
		Progress:       0,
	}
	if req.TargetFormat != "" {
		job.TargetFormat = req.TargetFormat
	}
	if req.TargetDuration > 0 {
		job.TargetDuration = req.TargetDuration
	}
	if req.MaxClips > 0 {
		job.MaxClips = req.MaxClips
	}
	if req.UserID != nil {
		uid, err := uuid.Parse(*req.UserID)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid user_id format")
		}
		job.UserID = &uid
	}

	created, err := h.Store.CreateJob(c.Context(), job)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("job insert failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create job")
	}

	h.Logger.WithFields(map[string]interface{}{
		"job_id": created.ID.String(),
		"name":   created.Name,
	}).Info("job accepted")

	h.Pipeline.Start(created.ID)

	return utils.RespondWithJSON(c, fiber.StatusCreated, created)
}

// GetJob retrieves one job along with its clips.
// GET /api/v1/jobs/:jobId
func (h *ApplicationHandler) GetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	job, err := h.Store.GetJob(c.Context(), jobID)
	if err != nil {
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
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve clips for job")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"job":   job,
		"clips": clips,
	})
}

// ListJobs retrieves all jobs, newest first.
// GET /api/v1/jobs
func (h *ApplicationHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.Store.ListJobs(c.Context())
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("job list failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve jobs")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, jobs)
}

// DeleteJob removes a job and, through the database cascade, its clips.
// Stored artifacts are retained; clip URLs simply stop being referenced.
// DELETE /api/v1/jobs/:jobId
func (h *ApplicationHandler) DeleteJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	if err := h.Store.DeleteJob(c.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		h.Logger.WithFields(map[string]interface{}{
			"job_id": jobID.String(),
			"error":  err.Error(),
		}).Error("job delete failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete job")
	}

	h.Logger.WithField("job_id", jobID.String()).Info("job deleted")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("Job %s deleted", jobID),
	})
}
