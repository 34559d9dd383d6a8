// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MeetingFile is one document listed on a meeting page, as recorded by the
// download collaborator in meeting_details.json.
type MeetingFile struct {
	// DisplayText is the link text on the meeting page.
	DisplayText string `json:"display_text" yaml:"display_text"`

	// FileName is the local file name inside the meeting folder.
	FileName string `json:"file_name" yaml:"file_name"`

	// URL is the original download location.
	URL string `json:"url" yaml:"url"`

	// Downloaded reports whether the file was fetched successfully.
	Downloaded bool `json:"downloaded" yaml:"downloaded"`
}

// Meeting is a council meeting with its downloaded documents.
type Meeting struct {
	// Name is the meeting title from the council calendar.
	Name string `json:"meeting_name" yaml:"meeting_name"`

	// Href links to the meeting detail page.
	Href string `json:"href" yaml:"href"`

	// DateTime is the scheduled start of the meeting.
	DateTime time.Time `json:"datetime" yaml:"datetime"`

	// Files lists the documents attached to the meeting.
	Files []MeetingFile `json:"files" yaml:"files"`

	// Dir is the local meeting folder. It is not part of the sidecar.
	Dir string `json:"-" yaml:"-"`
}

// Member is an elected councillor in the roster.
type Member struct {
	GivenName string `json:"given_name" yaml:"given_name"`
	Surname   string `json:"surname" yaml:"surname"`
	Party     string `json:"party" yaml:"party"`

	// Area is the local electoral area the member represents.
	Area string `json:"area" yaml:"area"`

	// TermStart and TermEnd bound the member's term of office. Either may
	// be nil when unknown.
	TermStart *time.Time `json:"term_start,omitempty" yaml:"term_start,omitempty"`
	TermEnd   *time.Time `json:"term_end,omitempty" yaml:"term_end,omitempty"`
}

// FullName returns the given name and surname separated by a space.
func (m Member) FullName() string {
	if m.GivenName == "" {
		return m.Surname
	}
	return m.GivenName + " " + m.Surname
}

// ServingAt reports whether the member's term covers t. Missing term bounds
// are treated as open.
func (m Member) ServingAt(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if m.TermStart != nil && t.Before(*m.TermStart) {
		return false
	}
	if m.TermEnd != nil && t.After(*m.TermEnd) {
		return false
	}
	return true
}
