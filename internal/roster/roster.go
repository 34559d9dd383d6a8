// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roster holds the elected members of the council and the rules
// that decide which of them are expected at a given meeting.
//
// A Roster is immutable after construction. Accessors return copies.
package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/council-minutes/pkg/types"
)

// Unknown is returned by AreaFor when no keyword rule matches.
const Unknown = "Unknown"

// ErrInvalidRoster is returned when a roster file is structurally wrong.
var ErrInvalidRoster = errors.New("invalid roster")

// KeywordRule maps a name to an area when every substring in All appears
// in the lower-cased name.
type KeywordRule struct {
	Area string   `yaml:"area"`
	All  []string `yaml:"all"`
}

// Group is an area made of other areas. AllMembers selects everyone;
// otherwise members whose area contains AreaContains are selected.
type Group struct {
	Name         string `yaml:"name"`
	AllMembers   bool   `yaml:"all_members"`
	AreaContains string `yaml:"area_contains"`
}

// Rules is the area selection configuration.
type Rules struct {
	Keywords []KeywordRule `yaml:"keywords"`
	Groups   []Group       `yaml:"groups"`
}

type rosterFile struct {
	Areas   Rules          `yaml:"areas"`
	Members []types.Member `yaml:"members"`
}

// Roster is the member reference data plus area rules.
type Roster struct {
	members []types.Member
	rules   Rules
}

// Load reads a YAML roster file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes roster YAML and validates it.
func Parse(data []byte) (*Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	for i, m := range f.Members {
		if strings.TrimSpace(m.Surname) == "" {
			return nil, fmt.Errorf("%w: member %d has no surname", ErrInvalidRoster, i+1)
		}
		if strings.TrimSpace(m.Area) == "" {
			return nil, fmt.Errorf("%w: member %s has no area", ErrInvalidRoster, m.FullName())
		}
	}
	for _, k := range f.Areas.Keywords {
		if k.Area == "" || len(k.All) == 0 {
			return nil, fmt.Errorf("%w: keyword rule needs an area and at least one keyword", ErrInvalidRoster)
		}
	}
	for _, g := range f.Areas.Groups {
		if g.Name == "" || (!g.AllMembers && g.AreaContains == "") {
			return nil, fmt.Errorf("%w: group %q selects nothing", ErrInvalidRoster, g.Name)
		}
	}
	return New(f.Members, f.Areas), nil
}

// New builds a roster from members and rules. Both are copied.
func New(members []types.Member, rules Rules) *Roster {
	r := &Roster{members: append([]types.Member(nil), members...)}
	for _, k := range rules.Keywords {
		lower := make([]string, len(k.All))
		for i, kw := range k.All {
			lower[i] = strings.ToLower(kw)
		}
		r.rules.Keywords = append(r.rules.Keywords, KeywordRule{Area: k.Area, All: lower})
	}
	r.rules.Groups = append([]Group(nil), rules.Groups...)
	return r
}

// Len returns the number of members.
func (r *Roster) Len() int { return len(r.members) }

// All returns a copy of every member.
func (r *Roster) All() []types.Member {
	return append([]types.Member(nil), r.members...)
}

// AreaFor returns the area of the first keyword rule matching name, or
// Unknown.
func (r *Roster) AreaFor(name string) string {
	lower := strings.ToLower(name)
	for _, k := range r.rules.Keywords {
		if containsAll(lower, k.All) {
			return k.Area
		}
	}
	return Unknown
}

// Members returns the members expected for area. Group names expand to
// their selection; any other name selects members of exactly that area.
// When at is non-zero, members whose term does not cover it are dropped.
func (r *Roster) Members(area string, at time.Time) []types.Member {
	match := func(m types.Member) bool { return m.Area == area }
	for _, g := range r.rules.Groups {
		if g.Name != area {
			continue
		}
		if g.AllMembers {
			match = func(types.Member) bool { return true }
		} else {
			contains := g.AreaContains
			match = func(m types.Member) bool { return strings.Contains(m.Area, contains) }
		}
		break
	}

	var out []types.Member
	for _, m := range r.members {
		if match(m) && m.ServingAt(at) {
			out = append(out, m)
		}
	}
	return out
}

// DuplicateSurnames returns the surnames shared by two or more of members,
// in order of first appearance.
func DuplicateSurnames(members []types.Member) []string {
	counts := make(map[string]int, len(members))
	var order []string
	for _, m := range members {
		if counts[m.Surname] == 0 {
			order = append(order, m.Surname)
		}
		counts[m.Surname]++
	}
	var dups []string
	for _, s := range order {
		if counts[s] > 1 {
			dups = append(dups, s)
		}
	}
	return dups
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
