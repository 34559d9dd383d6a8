// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package attendance pulls the chair and the members present out of the
// text of a set of meeting minutes and reconciles the members against the
// roster for the meeting's area.
//
// Reconciliation is by surname substring. Surnames shared by two or more
// members of the area are never used; tokens carrying them are left for
// manual review.
package attendance

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/council-minutes/internal/roster"
	"github.com/pdiddy/council-minutes/pkg/types"
)

// SectionStatus describes how a section of the minutes was located.
type SectionStatus string

const (
	SectionFound   SectionStatus = "found"
	SectionMissing SectionStatus = "missing"
	SectionTooLong SectionStatus = "too_long"
)

// Defaults for Options.
const (
	DefaultChairMaxLen   = 500
	DefaultMembersMaxLen = 1000
	DefaultMayorToken    = "Mayor Moran"
)

// Section is one located block of the minutes. Text is empty unless
// Status is SectionFound. Length is the raw length in runes when the
// header was found.
type Section struct {
	Text   string        `json:"text" yaml:"text"`
	Status SectionStatus `json:"status" yaml:"status"`
	Length int           `json:"length" yaml:"length"`
}

// Match records a token removed by a roster surname.
type Match struct {
	Surname string `json:"surname" yaml:"surname"`
	Token   string `json:"token" yaml:"token"`
}

// Extraction is the attendance found in one document.
type Extraction struct {
	Area    string  `json:"area" yaml:"area"`
	Chair   Section `json:"chair" yaml:"chair"`
	Members Section `json:"members" yaml:"members"`

	MayorPresent bool `json:"mayor_present" yaml:"mayor_present"`

	// Matched lists tokens reconciled against the roster, in roster order.
	Matched []Match `json:"matched,omitempty" yaml:"matched,omitempty"`

	// Unmatched lists the remaining member tokens in document order.
	Unmatched []string `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`

	// SkippedSurnames lists the area's shared surnames that were not used
	// for matching.
	SkippedSurnames []string `json:"skipped_surnames,omitempty" yaml:"skipped_surnames,omitempty"`
}

// Flagged reports whether either section was missing or too long.
func (e Extraction) Flagged() bool {
	return e.Chair.Status != SectionFound || e.Members.Status != SectionFound
}

// Options are the extraction bounds. Zero values take the defaults.
type Options struct {
	ChairMaxLen   int
	MembersMaxLen int
	MayorToken    string
}

// FromConfig converts the attendance configuration into Options.
func FromConfig(cfg types.AttendanceConfig) Options {
	return Options{
		ChairMaxLen:   cfg.ChairMaxLen,
		MembersMaxLen: cfg.MembersMaxLen,
		MayorToken:    cfg.MayorToken,
	}
}

var (
	chairPattern   = regexp.MustCompile(`(?s)PRESENT\s+IN\s+THE\s+CHAIR:\s*(.*?)\s*(?:MEMBERS\s+PRESENT|MEMBERS\s+IN\s+ATTENDANCE)`)
	membersPattern = regexp.MustCompile(`(?s)(?:MEMBERS\s+PRESENT|MEMBERS\s+IN\s+ATTENDANCE):\s*(.*?)\s*(?:OFFICIALS\s+IN\s+ATTENDANCE|$)`)

	chairTitles = titlePatterns(
		"Councillor", "Cllr", "An Cathaoirleach", "Leas-Chathaoirleach",
		"Cathaoirleach", "Príomh Chomhairleoir",
	)

	andWord = regexp.MustCompile(`\band\b`)

	// Compared in argument order, so "Councillors" wins over "Councillor".
	memberNoise = strings.NewReplacer(
		";", "",
		"\n", " ",
		"Councillors", "",
		"Councillor's", "",
		"Councillor", "",
		"MEMBERS ON-LINE", "",
		"(", "",
		")", "",
		".", "",
	)

	apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

	apology = cases.Fold().String("apolog")
)

func titlePatterns(titles ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(titles))
	for i, t := range titles {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b[.,]?`)
	}
	return out
}

// Extractor finds attendance in document text.
type Extractor struct {
	opts Options
}

// New returns an Extractor. Unset options take their defaults.
func New(opts Options) *Extractor {
	if opts.ChairMaxLen <= 0 {
		opts.ChairMaxLen = DefaultChairMaxLen
	}
	if opts.MembersMaxLen <= 0 {
		opts.MembersMaxLen = DefaultMembersMaxLen
	}
	if opts.MayorToken == "" {
		opts.MayorToken = DefaultMayorToken
	}
	return &Extractor{opts: opts}
}

// Extract locates the chair and members sections of text and reconciles
// member tokens against members, the roster subset for area.
func (x *Extractor) Extract(text, area string, members []types.Member) Extraction {
	text = norm.NFC.String(text)

	ex := Extraction{
		Area:            area,
		Chair:           locate(chairPattern, text, x.opts.ChairMaxLen),
		Members:         locate(membersPattern, text, x.opts.MembersMaxLen),
		SkippedSurnames: roster.DuplicateSurnames(members),
	}
	if ex.Chair.Status == SectionFound {
		ex.Chair.Text = cleanChair(ex.Chair.Text)
	}
	if ex.Members.Status != SectionFound {
		return ex
	}

	section := dropApologies(ex.Members.Text)
	ex.Members.Text = section

	mayor := norm.NFC.String(x.opts.MayorToken)
	if strings.Contains(section, mayor) {
		ex.MayorPresent = true
		section = strings.ReplaceAll(section, mayor, "")
	}

	ex.Matched, ex.Unmatched = reconcile(tokenize(section), members, ex.SkippedSurnames)
	return ex
}

// locate applies pattern and enforces the rune bound on the capture.
func locate(pattern *regexp.Regexp, text string, maxLen int) Section {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Section{Status: SectionMissing}
	}
	body := strings.TrimSpace(m[1])
	n := len([]rune(body))
	if n > maxLen {
		return Section{Status: SectionTooLong, Length: n}
	}
	return Section{Text: body, Status: SectionFound, Length: n}
}

func cleanChair(s string) string {
	for _, re := range chairTitles {
		s = re.ReplaceAllString(s, "")
	}
	s = strings.NewReplacer(",", " ", ".", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func dropApologies(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		if !strings.Contains(cases.Fold().String(line), apology) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// tokenize strips connectors and titles and splits the members section into
// candidate names.
func tokenize(section string) []string {
	s := apostrophes.Replace(section)
	s = andWord.ReplaceAllString(s, ",")
	s = memberNoise.Replace(s)

	var tokens []string
	for _, part := range strings.Split(s, ",") {
		tok := strings.Join(strings.Fields(strings.Trim(part, " \t:")), " ")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// reconcile removes, for each member with an unshared surname, the first
// remaining token containing that surname. tokens is not modified.
func reconcile(tokens []string, members []types.Member, shared []string) ([]Match, []string) {
	skip := make(map[string]bool, len(shared))
	for _, s := range shared {
		skip[s] = true
	}

	used := make([]bool, len(tokens))
	var matched []Match
	for _, m := range members {
		if skip[m.Surname] {
			continue
		}
		surname := apostrophes.Replace(norm.NFC.String(m.Surname))
		for i, tok := range tokens {
			if !used[i] && strings.Contains(tok, surname) {
				used[i] = true
				matched = append(matched, Match{Surname: m.Surname, Token: tok})
				break
			}
		}
	}

	var unmatched []string
	for i, tok := range tokens {
		if !used[i] {
			unmatched = append(unmatched, tok)
		}
	}
	return matched, unmatched
}
