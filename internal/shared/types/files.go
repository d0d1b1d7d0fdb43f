package types

import "time"

// FileRecord is the metadata row for one uploaded blob
type FileRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `json:"storage_path"`
	MimeType    string    `json:"mime_type"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuotaCheck is the outcome of a pre-upload quota check.
// It is a distinguished result, not an error: callers render usage and limit.
type QuotaCheck struct {
	Allowed      bool   `json:"allowed"`
	CurrentUsage int64  `json:"current_usage"`
	QuotaBytes   int64  `json:"quota_bytes"`
	ExceededBy   int64  `json:"exceeded_by"`
	Error        string `json:"error,omitempty"`
}

// UploadResult is returned by blob uploads
type UploadResult struct {
	Success    bool        `json:"success"`
	File       *FileRecord `json:"file,omitempty"`
	QuotaCheck *QuotaCheck `json:"quota_check,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// StorageUsage summarises a user's storage consumption
type StorageUsage struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}
