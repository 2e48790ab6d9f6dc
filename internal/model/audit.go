package model

import (
	"time"
)

// SentDateLayout is the on-disk format of the Sent Date column.
const SentDateLayout = "2006-01-02"

// Audit is one analyzed lead carrying analysis output and outreach progress.
// Column names match the durable audit store header exactly.
type Audit struct {
	URL              string      `csv:"URL"`
	PainPointSummary string      `csv:"Pain_Point_Summary"`
	Status           AuditStatus `csv:"Status"`
	Email            string      `csv:"Email"`
	Facebook         string      `csv:"Facebook"`
	LinkedIn         string      `csv:"LinkedIn"`
	Instagram        string      `csv:"Instagram"`
	Twitter          string      `csv:"Twitter"`
	ContactPage      string      `csv:"Contact Page"`
	SentDate         string      `csv:"Sent Date"`
	AuditAttached    bool        `csv:"Audit Attached"`
}

// SocialLinks returns the non-empty social platform links keyed by platform name.
func (a Audit) SocialLinks() map[string]string {
	links := make(map[string]string, 4)
	for platform, href := range map[string]string{
		"Facebook":  a.Facebook,
		"LinkedIn":  a.LinkedIn,
		"Instagram": a.Instagram,
		"Twitter":   a.Twitter,
	} {
		if href != "" {
			links[platform] = href
		}
	}
	return links
}

// HasSocial reports whether any social platform link was discovered.
func (a Audit) HasSocial() bool {
	return a.Facebook != "" || a.LinkedIn != "" || a.Instagram != "" || a.Twitter != ""
}

// SentTime parses the Sent Date column. The zero time and an error are
// returned when the column is empty or malformed; callers skip such rows.
func (a Audit) SentTime() (time.Time, error) {
	return time.Parse(SentDateLayout, a.SentDate)
}

// StampSent records a successful dispatch at the given time.
func (a *Audit) StampSent(now time.Time, attached bool) {
	a.SentDate = now.Format(SentDateLayout)
	a.AuditAttached = attached
}
