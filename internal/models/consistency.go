package models

import "time"

// IssueType classifies one piece of metadata/storage drift.
type IssueType string

const (
	// IssueOrphan: a storage object row exists with no file record.
	IssueOrphan IssueType = "ORPHAN"
	// IssueDBOnly: the metadata claims an object the backend does not have.
	IssueDBOnly IssueType = "DB_ONLY"
	// IssueSizeMismatch: physical size differs from the file record.
	IssueSizeMismatch IssueType = "SIZE_MISMATCH"
	// IssueError: the check itself failed for this object.
	IssueError IssueType = "ERROR"
)

// StorageObjectRef is the subset of a storage object embedded in an issue.
type StorageObjectRef struct {
	ID                 int    `json:"id"`
	ObjectKey          string `json:"object_key"`
	AvailabilityStatus string `json:"availability_status"`
}

// ConsistencyIssue is one detected drift between the metadata database
// and a physical storage tier.
//
// SIZE_MISMATCH issues carry both DBSize and ActualSize; ORPHAN issues
// carry neither (there is no file record to compare against).
type ConsistencyIssue struct {
	FileID        string            `json:"file_id"`
	FileName      string            `json:"file_name"`
	IssueType     IssueType         `json:"issue_type"`
	StorageType   StorageType       `json:"storage_type"`
	Description   string            `json:"description"`
	StorageObject *StorageObjectRef `json:"storage_object,omitempty"`
	DBSize        *int64            `json:"db_size,omitempty"`
	ActualSize    *int64            `json:"actual_size,omitempty"`
}

// ConsistencyResult is the aggregate output of one reconciliation pass.
type ConsistencyResult struct {
	TotalChecked    int                `json:"total_checked"`
	Inconsistencies int                `json:"inconsistencies"`
	Issues          []ConsistencyIssue `json:"issues"`
	CheckedAt       time.Time          `json:"checked_at"`
}
