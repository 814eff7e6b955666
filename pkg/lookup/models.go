package lookup

import "github.com/DSACMS/student-lookup-service/pkg/choice"

// StudentRecord is the normalized student returned by a search.
type StudentRecord struct {
	ID             string                `json:"id"`
	StudentID      string                `json:"studentId"`
	Name           string                `json:"name"`
	FirstName      choice.Option[string] `json:"firstName,omitzero"`
	LastName       choice.Option[string] `json:"lastName,omitzero"`
	Email          choice.Option[string] `json:"email,omitzero"`
	Phone          choice.Option[string] `json:"phone,omitzero"`
	Status         choice.Option[string] `json:"status,omitzero"`
	CreatedOn      choice.Option[string] `json:"createdOn,omitzero"`
	Tags           []string              `json:"tags"`
	AdditionalInfo AdditionalInfo        `json:"additionalInfo"`
}

type AdditionalInfo struct {
	Address choice.Option[string] `json:"address,omitzero"`
	City    choice.Option[string] `json:"city,omitzero"`
	State   choice.Option[string] `json:"state,omitzero"`
	Country choice.Option[string] `json:"country,omitzero"`
}

// StudentSummary is the partial record used by listings.
type StudentSummary struct {
	ID        string                `json:"id"`
	StudentID string                `json:"studentId"`
	Name      string                `json:"name"`
	Email     choice.Option[string] `json:"email,omitzero"`
	Phone     choice.Option[string] `json:"phone,omitzero"`
	Status    choice.Option[string] `json:"status,omitzero"`
}

type PageRequest struct {
	Page  int `validate:"min=1"`
	Limit int `validate:"min=1"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	// Number of students in this page after filtering, not the CRM total.
	Total int `json:"total"`
}

type StudentPage struct {
	Students   []StudentSummary
	Pagination Pagination
}
