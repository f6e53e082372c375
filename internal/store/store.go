// Package store persists job and clip records through Supabase/PostgREST.
// Partial updates go through field maps so the pipeline can advance status
// and progress without rewriting whole rows.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"clipforge/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const (
	jobsTable  = "clip_jobs"
	clipsTable = "clips"
)

// Client wraps the Supabase client with typed job/clip operations.
type Client struct {
	db  *supa.Client
	log *logrus.Logger
}

// New builds a store client.
func New(db *supa.Client, log *logrus.Logger) *Client {
	return &Client{db: db, log: log}
}

// CreateJob inserts a job record and returns the stored row.
func (c *Client) CreateJob(ctx context.Context, job models.Job) (*models.Job, error) {
	bodyBytes, _, err := c.db.From(jobsTable).
		Insert(job, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	var rows []models.Job
	if err := json.Unmarshal(bodyBytes, &rows); err != nil {
		return nil, fmt.Errorf("decode inserted job: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert job returned no rows")
	}
	return &rows[0], nil
}

// GetJob fetches one job by id.
func (c *Client) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	bodyBytes, _, err := c.db.From(jobsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}

	var rows []models.Job
	if err := json.Unmarshal(bodyBytes, &rows); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListJobs returns all jobs, newest first.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	bodyBytes, _, err := c.db.From(jobsTable).
		Select("*", "", false).
		Order("created_at", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	var rows []models.Job
	if err := json.Unmarshal(bodyBytes, &rows); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	if rows == nil {
		rows = []models.Job{}
	}
	return rows, nil
}

// UpdateJob applies a partial field update to one job.
func (c *Client) UpdateJob(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	_, count, err := c.db.From(jobsTable).
		Update(fields, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob removes a job record. Owned clips are removed by the database's
// cascade rule.
func (c *Client) DeleteJob(ctx context.Context, id uuid.UUID) error {
	_, count, err := c.db.From(jobsTable).
		Delete("", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateClips inserts all clip records for a job in one call and returns
// the stored rows in insertion order.
func (c *Client) CreateClips(ctx context.Context, clips []models.Clip) ([]models.Clip, error) {
	bodyBytes, _, err := c.db.From(clipsTable).
		Insert(clips, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("insert clips: %w", err)
	}

	var rows []models.Clip
	if err := json.Unmarshal(bodyBytes, &rows); err != nil {
		return nil, fmt.Errorf("decode inserted clips: %w", err)
	}
	if len(rows) != len(clips) {
		return nil, fmt.Errorf("insert clips returned %d rows, want %d", len(rows), len(clips))
	}
	return rows, nil
}

// UpdateClip applies a partial field update to one clip.
func (c *Client) UpdateClip(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	_, count, err := c.db.From(clipsTable).
		Update(fields, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("update clip %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClips returns all clips for a job in creation order.
func (c *Client) ListClips(ctx context.Context, jobID uuid.UUID) ([]models.Clip, error) {
	bodyBytes, _, err := c.db.From(clipsTable).
		Select("*", "", false).
		Eq("job_id", jobID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list clips for job %s: %w", jobID, err)
	}

	var rows []models.Clip
	if err := json.Unmarshal(bodyBytes, &rows); err != nil {
		return nil, fmt.Errorf("decode clips for job %s: %w", jobID, err)
	}
	if rows == nil {
		rows = []models.Clip{}
	}
	return rows, nil
}
