package crm

import (
	"bytes"
	"encoding/json"

	"github.com/DSACMS/student-lookup-service/pkg/choice"
)

// Contact is the CRM's native contact shape. Only ID is guaranteed.
type Contact struct {
	ID          string                      `json:"id"`
	FirstName   choice.Option[string]       `json:"firstName,omitzero"`
	LastName    choice.Option[string]       `json:"lastName,omitzero"`
	Email       choice.Option[string]       `json:"email,omitzero"`
	Phone       choice.Option[string]       `json:"phone,omitzero"`
	Status      choice.Option[string]       `json:"status,omitzero"`
	DateAdded   choice.Option[string]       `json:"dateAdded,omitzero"`
	Tags        choice.Option[[]string]     `json:"tags,omitzero"`
	Address1    choice.Option[string]       `json:"address1,omitzero"`
	City        choice.Option[string]       `json:"city,omitzero"`
	State       choice.Option[string]       `json:"state,omitzero"`
	Country     choice.Option[string]       `json:"country,omitzero"`
	CustomField choice.Option[CustomFields] `json:"customField,omitzero"`
}

// CustomFields maps a CRM custom field key to its raw JSON value.
type CustomFields map[string]json.RawMessage

// UnmarshalJSON accepts only a JSON object. Any other shape (some CRM
// versions send a list of {id, value} pairs) decodes to no fields.
func (f *CustomFields) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*f = CustomFields{}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	*f = fields
	return nil
}

// String returns the value stored under key when it is a JSON string.
// Numbers, booleans, objects and null are reported as absent.
func (f CustomFields) String(key string) choice.Option[string] {
	raw, ok := f[key]
	if !ok {
		return choice.None[string]()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return choice.None[string]()
	}
	return choice.Some(s)
}

// CustomString reads a string custom field, absent when the contact has no
// custom fields at all.
func (c Contact) CustomString(key string) choice.Option[string] {
	fields, ok := c.CustomField.Get()
	if !ok {
		return choice.None[string]()
	}
	return fields.String(key)
}

type ContactsResponse struct {
	// Absent when the CRM omitted "contacts" or sent null.
	Contacts choice.Option[[]Contact] `json:"contacts,omitzero"`
}
