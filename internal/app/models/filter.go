package models

import "time"

// RequestFilter narrows a request listing. Zero values mean "no constraint".
// The access gate produces the role-derived part; user-supplied query
// filters are merged on top by the service.
type RequestFilter struct {
	StudentID      string        // subject's user id
	RegisterNumber string        // roster membership for bulk requests
	Status         RequestStatus // exact status
	ExcludeStatus  RequestStatus // everything but this status
	CoordinatorID  string        // event coordinator's user id
	DateFrom       time.Time
	DateTo         time.Time

	// Page window. A zero Limit returns everything.
	Limit  int
	Offset uint64
}
