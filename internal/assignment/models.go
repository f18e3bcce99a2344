package assignment

// Assignment is the tool-side record for one platform resource link. The key
// is the resource_link id from the launch claims, so repeat launches land on
// the same assignment.
type Assignment struct {
	ResourceLinkID string `json:"resource_link_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	AllowMultiple  bool   `json:"allow_multiple"`
}

// Submission is a student's text submission for an assignment.
type Submission struct {
	ID             string   `json:"id"`
	ResourceLinkID string   `json:"resource_link_id"`
	UserID         string   `json:"user_id"` // sub claim
	Body           string   `json:"body"`
	Comment        string   `json:"comment,omitempty"`
	Grade          *float64 `json:"grade,omitempty"`
	CreatedAt      int64    `json:"created_at"`
}
