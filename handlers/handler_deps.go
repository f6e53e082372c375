package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipforge/models"
)

// JobStore defines the persistence operations handlers expect. The concrete
// implementation lives in internal/store; tests substitute fakes.
type JobStore interface {
	CreateJob(ctx context.Context, job models.Job) (*models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	ListClips(ctx context.Context, jobID uuid.UUID) ([]models.Clip, error)
}

// PipelineStarter launches background processing for an accepted job.
// Start returns immediately; the job record is the only result channel.
type PipelineStarter interface {
	Start(jobID uuid.UUID)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Store    JobStore
	Pipeline PipelineStarter
	Validate *validator.Validate
	Logger   *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(store JobStore, pipeline PipelineStarter, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Store:    store,
		Pipeline: pipeline,
		Validate: validator.New(),
		Logger:   logger,
	}
}
