package crm

import (
	"net/url"
	"strconv"
)

// ContactsQuery describes one GET contacts/ call. Zero-valued optional
// fields are left off the query string.
type ContactsQuery struct {
	// Free-text search.
	Query string
	// Restricts the search to a custom field key.
	CustomField string
	Limit       int
	// Offset-style cursor, sent as startAfter.
	StartAfter int
	// Set when StartAfter must be sent even if it is 0.
	Paginate bool
}

func (q ContactsQuery) values(locationID string) url.Values {
	v := url.Values{}
	v.Set("locationId", locationID)

	if q.Query != "" {
		v.Set("query", q.Query)
	}
	if q.CustomField != "" {
		v.Set("customField", q.CustomField)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Paginate || q.StartAfter > 0 {
		v.Set("startAfter", strconv.Itoa(q.StartAfter))
	}

	return v
}
