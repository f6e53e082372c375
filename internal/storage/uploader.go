// Package storage persists clip artifacts to Supabase object storage and
// hands back public URLs. Paths are keyed by user, job, and clip id so
// artifacts stay grouped per owner.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
)

// Uploader writes byte buffers into a single storage bucket.
type Uploader struct {
	storage *storage_go.Client
	bucket  string
	log     *logrus.Logger
}

// NewUploader builds an uploader for the given bucket.
func NewUploader(client *storage_go.Client, bucket string, log *logrus.Logger) *Uploader {
	return &Uploader{storage: client, bucket: bucket, log: log}
}

// Put stores data under path and returns the public URL and byte size.
// The ctx parameter is accepted for interface symmetry; the underlying
// storage client manages its own request lifecycle.
func (u *Uploader) Put(ctx context.Context, path string, data []byte, contentType string) (string, int64, error) {
	upsert := true
	_, err := u.storage.UploadFile(u.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", path, err)
	}

	public := u.storage.GetPublicUrl(u.bucket, path)
	u.log.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(data),
	}).Info("artifact stored")

	return public.SignedURL, int64(len(data)), nil
}

// ObjectPath builds the canonical storage path for a clip artifact.
func ObjectPath(userID, jobID, clipID, ext string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("%s/%s/%s%s", userID, jobID, clipID, ext)
}
