package patentsview

import (
	"strings"
	"time"

	"github.com/patentstack/patentstack/internal/patent"
)

// mapPatent converts a raw granted patent into a patent record. Records
// missing an ID or title are dropped; the caller counts them as skipped.
func mapPatent(raw *rawPatent) (patent.Patent, bool) {
	if raw.PatentID == "" || strings.TrimSpace(raw.Title) == "" {
		return patent.Patent{}, false
	}

	p := patent.Patent{
		ID:              raw.PatentID,
		Title:           strings.TrimSpace(raw.Title),
		Abstract:        strings.TrimSpace(raw.Abstract),
		PublicationDate: raw.Date,
		KindCode:        raw.KindCode,
		CountryCode:     "US",
		RecordType:      patent.RecordTypeGranted,
		Source:          patent.SourceUSPTOPatents,
		URL:             "https://patents.google.com/patent/US" + raw.PatentID,
		FetchedAt:       time.Now().UTC(),
	}
	if len(raw.Application) > 0 {
		p.ApplicationNumber = raw.Application[0].ApplicationNumber
		p.FilingDate = raw.Application[0].FilingDate
	}
	fillParties(&p, raw.Assignees, raw.Inventors, raw.CPCAtIssue)
	return p, true
}

// mapPublication converts a raw pre-grant publication into a patent record.
func mapPublication(raw *rawPublication) (patent.Patent, bool) {
	if raw.DocumentNumber == "" || strings.TrimSpace(raw.Title) == "" {
		return patent.Patent{}, false
	}

	p := patent.Patent{
		ID:              raw.DocumentNumber,
		Title:           strings.TrimSpace(raw.Title),
		Abstract:        strings.TrimSpace(raw.Abstract),
		PublicationDate: raw.Date,
		KindCode:        raw.KindCode,
		CountryCode:     "US",
		RecordType:      patent.RecordTypePublication,
		Source:          patent.SourceUSPTOPublications,
		URL:             "https://patents.google.com/patent/US" + raw.DocumentNumber,
		FetchedAt:       time.Now().UTC(),
	}
	fillParties(&p, raw.Assignees, raw.Inventors, raw.CPCAtIssue)
	return p, true
}

// fillParties copies assignee, inventor, and CPC data onto the record.
// The first assignee is treated as primary; inventor names are joined
// into a single semicolon-separated string.
func fillParties(p *patent.Patent, assignees []rawAssignee, inventors []rawInventor, cpc []rawCPC) {
	if len(assignees) > 0 {
		p.Assignee = strings.TrimSpace(assignees[0].Organization)
		p.AssigneeCity = assignees[0].City
		p.AssigneeState = assignees[0].State
		p.AssigneeCountry = assignees[0].Country
	}

	var names []string
	for _, inv := range inventors {
		name := strings.TrimSpace(strings.TrimSpace(inv.FirstName) + " " + strings.TrimSpace(inv.LastName))
		if name != "" {
			names = append(names, name)
		}
	}
	p.Inventors = strings.Join(names, "; ")

	seen := make(map[string]bool)
	for _, c := range cpc {
		if c.GroupID == "" || seen[c.GroupID] {
			continue
		}
		seen[c.GroupID] = true
		p.CPCCodes = append(p.CPCCodes, c.GroupID)
	}
}
