package model

import "time"

// ProfileImage describes a stored profile image. The image bytes live in the
// object store; this is only its metadata.
type ProfileImage struct {
	ID          string    `json:"file_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
