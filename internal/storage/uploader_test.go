package storage

import "testing"

func TestObjectPath(t *testing.T) {
	tests := []struct {
		name                       string
		userID, jobID, clipID, ext string
		want                       string
	}{
		{"full", "u1", "j1", "c1", ".mp4", "u1/j1/c1.mp4"},
		{"no user", "", "j1", "c1", ".jpg", "anonymous/j1/c1.jpg"},
		{"captioned suffix", "u1", "j1", "c1_captioned", ".mp4", "u1/j1/c1_captioned.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectPath(tt.userID, tt.jobID, tt.clipID, tt.ext); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
