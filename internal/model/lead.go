// Package model defines the lead and audit records shared by every pipeline
// stage, plus the status state machine that governs their transitions.
package model

// LeadStatus is the closed set of states a discovered lead can occupy.
type LeadStatus string

const (
	// LeadUnscanned marks a freshly discovered lead the analyst has not visited.
	LeadUnscanned LeadStatus = "Unscanned"
	// LeadProcessed marks a lead the analyst has visited. Terminal for the
	// lead record; the downstream outcome lives in the audit record.
	LeadProcessed LeadStatus = "Processed"
)

// Lead is one discovered candidate business website.
type Lead struct {
	URL    string     `csv:"URL"`
	Status LeadStatus `csv:"Status"`
}

// NewLead creates an Unscanned lead for a URL.
func NewLead(url string) Lead {
	return Lead{URL: url, Status: LeadUnscanned}
}
