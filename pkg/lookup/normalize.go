package lookup

import (
	"strings"

	"github.com/DSACMS/student-lookup-service/pkg/crm"
)

func fullName(c crm.Contact) string {
	return strings.TrimSpace(c.FirstName.OrElse("") + " " + c.LastName.OrElse(""))
}

func toStudentRecord(c crm.Contact, studentID string) StudentRecord {
	tags := c.Tags.OrElse(nil)
	if tags == nil {
		tags = []string{}
	}

	return StudentRecord{
		ID:        c.ID,
		StudentID: studentID,
		Name:      fullName(c),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		CreatedOn: c.DateAdded,
		Tags:      tags,
		AdditionalInfo: AdditionalInfo{
			Address: c.Address1,
			City:    c.City,
			State:   c.State,
			Country: c.Country,
		},
	}
}

func toStudentSummary(c crm.Contact, studentID string) StudentSummary {
	return StudentSummary{
		ID:        c.ID,
		StudentID: studentID,
		Name:      fullName(c),
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
	}
}
