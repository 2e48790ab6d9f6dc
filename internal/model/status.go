package model

import "github.com/rotisserie/eris"

// AuditStatus is the closed set of states an audit record can occupy.
type AuditStatus string

// Creation-time states, assigned by the analyst's priority rule.
const (
	// StatusAnalyzed means a contact email was resolved; the record is ready
	// for outreach.
	StatusAnalyzed AuditStatus = "Analyzed"
	// StatusDeadEnd means no email, no social link, and no contact page were found.
	StatusDeadEnd AuditStatus = "Dead End"
	// StatusRequiresDM means no email was found but a social profile exists.
	StatusRequiresDM AuditStatus = "Requires DM"
	// StatusUseForm means the only contact route found is a contact-page form.
	StatusUseForm AuditStatus = "Use Form"
	// StatusDeadEndNoEmail means outreach-time enrichment also failed to find
	// an address.
	StatusDeadEndNoEmail AuditStatus = "Dead End - No Email"
)

// Outreach states, assigned by the sniper.
const (
	StatusSent                  AuditStatus = "Sent"
	StatusSendFailed            AuditStatus = "Send Failed"
	StatusSkippedPreviouslySent AuditStatus = "Skipped - Previously Sent"
	StatusError                 AuditStatus = "Error"
)

// Resolution states, assigned by the closer.
const (
	StatusReplied       AuditStatus = "Replied"
	StatusFollowedUp    AuditStatus = "Followed Up"
	StatusHotLead       AuditStatus = "Hot Lead"
	StatusNotInterested AuditStatus = "Not Interested"
	StatusDead          AuditStatus = "Dead"
)

// auditEdges enumerates every legal forward transition. Transitions are
// terminal-forward only; no state is ever reverted.
var auditEdges = map[AuditStatus][]AuditStatus{
	StatusAnalyzed: {
		StatusSent,
		StatusSendFailed,
		StatusSkippedPreviouslySent,
		StatusError,
		StatusDeadEndNoEmail,
	},
	StatusSendFailed: {
		// A send failure is retryable by a future run.
		StatusSent,
		StatusSkippedPreviouslySent,
		StatusError,
	},
	StatusSent: {
		StatusReplied,
		StatusHotLead,
		StatusNotInterested,
		StatusDead,
		StatusFollowedUp,
	},
	StatusFollowedUp: {
		StatusReplied,
		StatusHotLead,
		StatusNotInterested,
		StatusDead,
	},
}

// CanTransition reports whether moving an audit from one status to another is
// a legal edge of the outreach state machine.
func CanTransition(from, to AuditStatus) bool {
	for _, next := range auditEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo mutates the audit's status after validating the edge.
func (a *Audit) TransitionTo(to AuditStatus) error {
	if !CanTransition(a.Status, to) {
		return eris.Errorf("model: illegal audit transition %q -> %q for %s", a.Status, to, a.URL)
	}
	a.Status = to
	return nil
}

// Contacted reports whether the record has reached an outreach-or-later state,
// meaning its address must never be the target of a fresh send.
func (s AuditStatus) Contacted() bool {
	switch s {
	case StatusSent, StatusFollowedUp, StatusReplied, StatusHotLead, StatusNotInterested, StatusDead:
		return true
	}
	return false
}

// AwaitingReply reports whether the closer should examine the record.
func (s AuditStatus) AwaitingReply() bool {
	return s == StatusSent || s == StatusFollowedUp
}
