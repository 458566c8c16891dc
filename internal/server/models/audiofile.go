package models

import "time"

// AudioFile describes server-side metadata for an uploaded audio file.
// The content itself is stored in object storage under (S3Bucket, S3Key);
// the key is simply the record id.
type AudioFile struct {
	ID        string
	FileName  string
	S3Bucket  string
	S3Key     string
	UserID    string
	Liked     bool
	CreatedAt time.Time
}
