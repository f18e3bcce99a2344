package assignment

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("assignment: not found")
	ErrAlreadySubmitted = errors.New("assignment: already submitted")
)

// Store is the persistence surface the launch flow and handlers depend on.
// Implementations receive only fully-validated identity values.
type Store interface {
	// EnsureAssignment upserts the row for a launched resource link. Title is
	// only used when the row does not exist yet; instructor edits win.
	EnsureAssignment(ctx context.Context, resourceLinkID, title string) (Assignment, error)
	GetAssignment(ctx context.Context, resourceLinkID string) (Assignment, error)
	UpdateAssignment(ctx context.Context, a Assignment) error

	// CreateSubmission enforces the single-submission rule unless the
	// assignment allows multiple.
	CreateSubmission(ctx context.Context, sub Submission) error
	ListSubmissions(ctx context.Context, resourceLinkID, userID string) ([]Submission, error)
	ListAllSubmissions(ctx context.Context, resourceLinkID string) ([]Submission, error)
	GradeSubmission(ctx context.Context, id string, grade float64, comment string) error
}
