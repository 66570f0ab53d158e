// Package report holds the reporting records of the admin panel.
package report

import "github.com/darasahq/darasa/core/identity"

// Report is a generated summary over a date range. The API serves the range
// bounds in snake case.
type Report struct {
	ID        string       `json:"id"`
	User      identity.Ref `json:"user"`
	StartDate string       `json:"start_date,omitempty"`
	EndDate   string       `json:"end_date,omitempty"`
	Type      string       `json:"type"`
	Content   string       `json:"content,omitempty"`
}
