package applications

import "time"

// Status is the pipeline stage of an application.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusWithdrawn Status = "Withdrawn"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Application is a job application logged by a user against one of their resumes.
type Application struct {
	ID              string     `json:"_id"`
	UserID          string     `json:"user"`
	ResumeID        string     `json:"resume"`
	Company         string     `json:"company"`
	Position        string     `json:"position"`
	JobDescription  string     `json:"jobDescription,omitempty"`
	Salary          string     `json:"salary,omitempty"`
	Location        string     `json:"location,omitempty"`
	JobURL          string     `json:"jobUrl,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Status          Status     `json:"status"`
	ApplicationDate time.Time  `json:"applicationDate"`
	FollowUpDate    *time.Time `json:"followUpDate,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Sort keys accepted by ListFilter.
const (
	SortApplicationDate = "applicationDate"
	SortCompany         = "company"
	SortPosition        = "position"
	SortStatus          = "status"
	SortUpdatedAt       = "updatedAt"
)

// ListFilter narrows and orders a user's applications. Zero values mean
// all statuses, newest application date first.
type ListFilter struct {
	Status Status
	SortBy string
	Asc    bool
}

// StatusCount is one bucket of the stats overview.
type StatusCount struct {
	Status Status `json:"_id"`
	Count  int    `json:"count"`
}

// Stats summarizes a user's applications. Statuses with no applications are omitted.
type Stats struct {
	Total    int           `json:"total"`
	ByStatus []StatusCount `json:"byStatus"`
}
