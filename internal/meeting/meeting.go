// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package meeting reads the meeting folders written by the download step
// and writes the per-meeting README index beside the converted Markdown.
//
// The download tree is laid out as
//
//	<root>/<YYYY>/<MM>/<DD>-<meeting name>/meeting_details.json
//
// with the downloaded files next to the sidecar.
package meeting

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/council-minutes/pkg/types"
)

// DetailsFile is the sidecar name inside each meeting folder.
const DetailsFile = "meeting_details.json"

// Sidecar timestamps are written without a zone.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// YearMonth identifies one month folder.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) index() int { return ym.Year*12 + int(ym.Month) - 1 }

// Range is an inclusive span of months.
type Range struct {
	From, To YearMonth
}

// Validate checks that both ends are real months and From is not after To.
func (r Range) Validate() error {
	for _, ym := range []YearMonth{r.From, r.To} {
		if ym.Month < time.January || ym.Month > time.December {
			return fmt.Errorf("month %d out of range 1-12", ym.Month)
		}
	}
	if r.From.index() > r.To.index() {
		return fmt.Errorf("start %d-%02d is after end %d-%02d", r.From.Year, r.From.Month, r.To.Year, r.To.Month)
	}
	return nil
}

// Filter narrows meetings by folder name and files by file name. Matching
// is a case-insensitive substring test against any entry; an empty list
// matches everything.
type Filter struct {
	Meetings []string
	Files    []string
}

// MatchMeeting reports whether a meeting folder name passes the filter.
func (f Filter) MatchMeeting(name string) bool { return matchAny(name, f.Meetings) }

// MatchFile reports whether a file name passes the filter.
func (f Filter) MatchFile(name string) bool { return matchAny(name, f.Files) }

func matchAny(s string, words []string) bool {
	if len(words) == 0 {
		return true
	}
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

type sidecar struct {
	Name     string              `json:"meeting_name"`
	Href     string              `json:"href"`
	DateTime string              `json:"datetime"`
	Files    []types.MeetingFile `json:"files"`
}

// Scan returns the meetings under root within r that pass f, in folder
// order. Missing year or month folders and folders without a sidecar are
// skipped. Unreadable sidecars are logged and skipped.
func Scan(root string, r Range, f Filter, logger zerolog.Logger) ([]types.Meeting, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("download directory: %w", err)
	}

	var meetings []types.Meeting
	for i := r.From.index(); i <= r.To.index(); i++ {
		ym := YearMonth{Year: i / 12, Month: time.Month(i%12 + 1)}
		monthDir := filepath.Join(root, fmt.Sprintf("%04d", ym.Year), fmt.Sprintf("%02d", ym.Month))

		entries, err := os.ReadDir(monthDir)
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Str("dir", monthDir).Msg("month folder missing, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", monthDir, err)
		}

		for _, e := range entries {
			if !e.IsDir() || !f.MatchMeeting(e.Name()) {
				continue
			}
			dir := filepath.Join(monthDir, e.Name())
			m, err := Load(dir)
			if errors.Is(err, os.ErrNotExist) {
				logger.Debug().Str("dir", dir).Msg("no meeting details, skipping")
				continue
			}
			if err != nil {
				logger.Warn().Err(err).Str("dir", dir).Msg("skipping meeting")
				continue
			}
			meetings = append(meetings, m)
		}
	}
	return meetings, nil
}

// Load reads the sidecar in dir.
func Load(dir string) (types.Meeting, error) {
	data, err := os.ReadFile(filepath.Join(dir, DetailsFile))
	if err != nil {
		return types.Meeting{}, err
	}

	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return types.Meeting{}, fmt.Errorf("parsing %s: %w", DetailsFile, err)
	}

	m := types.Meeting{Name: sc.Name, Href: sc.Href, Files: sc.Files, Dir: dir}
	if sc.DateTime != "" {
		t, err := parseDate(sc.DateTime)
		if err != nil {
			return types.Meeting{}, err
		}
		m.DateTime = t
	}
	return m, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized meeting datetime %q", s)
}

// FilePath returns the local path of file within meeting m.
func FilePath(m types.Meeting, file types.MeetingFile) string {
	return filepath.Join(m.Dir, file.FileName)
}

// Eligible reports whether file should be converted: it was downloaded,
// is a PDF, passes the file filter and exists on disk.
func Eligible(m types.Meeting, file types.MeetingFile, f Filter) bool {
	if !file.Downloaded || !strings.EqualFold(filepath.Ext(file.FileName), ".pdf") {
		return false
	}
	if !f.MatchFile(file.FileName) {
		return false
	}
	_, err := os.Stat(FilePath(m, file))
	return err == nil
}
