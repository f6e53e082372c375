package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipforge/internal/store"
	"clipforge/models"
)

type fakeJobStore struct {
	jobs      map[uuid.UUID]*models.Job
	clips     map[uuid.UUID][]models.Clip
	createErr error
	deleted   []uuid.UUID
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:  map[uuid.UUID]*models.Job{},
		clips: map[uuid.UUID][]models.Clip{},
	}
}

func (s *fakeJobStore) CreateJob(ctx context.Context, job models.Job) (*models.Job, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	job.ID = uuid.New()
	s.jobs[job.ID] = &job
	return &job, nil
}

func (s *fakeJobStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job, nil
}

func (s *fakeJobStore) ListJobs(ctx context.Context) ([]models.Job, error) {
	var out []models.Job
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (s *fakeJobStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.jobs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeJobStore) ListClips(ctx context.Context, jobID uuid.UUID) ([]models.Clip, error) {
	return s.clips[jobID], nil
}

type fakePipeline struct {
	started []uuid.UUID
}

func (p *fakePipeline) Start(jobID uuid.UUID) {
	p.started = append(p.started, jobID)
}

func newTestApp() (*fiber.App, *fakeJobStore, *fakePipeline) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	st := newFakeJobStore()
	pl := &fakePipeline{}
	h := NewApplicationHandler(st, pl, log)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/jobs", h.CreateJob)
	api.Get("/jobs", h.ListJobs)
	api.Get("/jobs/:jobId", h.GetJob)
	api.Delete("/jobs/:jobId", h.DeleteJob)
	api.Get("/jobs/:jobId/clips", h.ListJobClips)
	return app, st, pl
}

func postJSON(app *fiber.App, path, body string) (*envelope, int, error) {
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, resp.StatusCode, err
	}
	return &env, resp.StatusCode, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func TestCreateJobAcceptsAndStartsPipeline(t *testing.T) {
	app, st, pl := newTestApp()

	env, code, err := postJSON(app, "/api/v1/jobs", `{
		"name": "  launch teaser  ",
		"source_video_url": "https://videos.example.com/launch.mp4",
		"target_format": "square",
		"max_clips": 5
	}`)
	if err != nil {
		t.Fatal(err)
	}
	if code != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", code)
	}
	if env.Status != "success" {
		t.Fatalf("envelope status = %q", env.Status)
	}

	var job models.Job
	if err := json.Unmarshal(env.Data, &job); err != nil {
		t.Fatal(err)
	}
	if job.Name != "launch teaser" {
		t.Errorf("name = %q, want trimmed", job.Name)
	}
	if job.Status != models.JobStatusPending || job.Progress != 0 {
		t.Errorf("new job status/progress = %s/%d, want pending/0", job.Status, job.Progress)
	}
	if job.TargetFormat != models.FormatSquare || job.MaxClips != 5 {
		t.Errorf("format/max_clips = %s/%d", job.TargetFormat, job.MaxClips)
	}
	if job.TargetDuration != 30 {
		t.Errorf("target_duration = %d, want default 30", job.TargetDuration)
	}

	if len(pl.started) != 1 || pl.started[0] != job.ID {
		t.Errorf("pipeline started for %v, want [%s]", pl.started, job.ID)
	}
	if _, ok := st.jobs[job.ID]; !ok {
		t.Error("job not persisted")
	}
}

func TestCreateJobValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"source_video_url": "https://v.example.com/a.mp4"}`},
		{"missing url", `{"name": "x"}`},
		{"bad url", `{"name": "x", "source_video_url": "not-a-url"}`},
		{"bad format", `{"name": "x", "source_video_url": "https://v.example.com/a.mp4", "target_format": "circular"}`},
		{"too many clips", `{"name": "x", "source_video_url": "https://v.example.com/a.mp4", "max_clips": 50}`},
		{"bad caption style", `{"name": "x", "source_video_url": "https://v.example.com/a.mp4", "caption_style": "comic-sans"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, pl := newTestApp()
			env, code, err := postJSON(app, "/api/v1/jobs", tt.body)
			if err != nil {
				t.Fatal(err)
			}
			if code != fiber.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if env.Status != "error" {
				t.Errorf("envelope status = %q, want error", env.Status)
			}
			if len(pl.started) != 0 {
				t.Error("pipeline started despite invalid payload")
			}
		})
	}
}

func TestGetJobWithClips(t *testing.T) {
	app, st, _ := newTestApp()

	jobID := uuid.New()
	st.jobs[jobID] = &models.Job{ID: jobID, Name: "demo", Status: models.JobStatusCompleted, Progress: 100}
	st.clips[jobID] = []models.Clip{
		{ID: uuid.New(), JobID: jobID, Status: models.ClipStatusCompleted},
		{ID: uuid.New(), JobID: jobID, Status: models.ClipStatusFailed},
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/jobs/"+jobID.String(), nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Job   models.Job    `json:"job"`
		Clips []models.Clip `json:"clips"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Job.ID != jobID {
		t.Errorf("job id = %s, want %s", payload.Job.ID, jobID)
	}
	if len(payload.Clips) != 2 {
		t.Errorf("clips = %d, want 2", len(payload.Clips))
	}
}

func TestGetJobNotFound(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/jobs/"+uuid.NewString(), nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetJobBadID(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/jobs/not-a-uuid", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteJob(t *testing.T) {
	app, st, _ := newTestApp()

	jobID := uuid.New()
	st.jobs[jobID] = &models.Job{ID: jobID, Name: "old"}

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/jobs/"+jobID.String(), nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(st.deleted) != 1 || st.deleted[0] != jobID {
		t.Errorf("deleted = %v, want [%s]", st.deleted, jobID)
	}

	resp2, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/jobs/"+jobID.String(), nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp2.StatusCode)
	}
}

func TestListJobClipsRequiresExistingJob(t *testing.T) {
	app, st, _ := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/jobs/"+uuid.NewString()+"/clips", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	jobID := uuid.New()
	st.jobs[jobID] = &models.Job{ID: jobID}
	st.clips[jobID] = []models.Clip{{ID: uuid.New(), JobID: jobID}}

	resp2, err := app.Test(httptest.NewRequest("GET", "/api/v1/jobs/"+jobID.String()+"/clips", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp2.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp2.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	var clips []models.Clip
	if err := json.Unmarshal(env.Data, &clips); err != nil {
		t.Fatal(err)
	}
	if len(clips) != 1 {
		t.Errorf("clips = %d, want 1", len(clips))
	}
}
