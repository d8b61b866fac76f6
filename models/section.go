package models

import (
	"fmt"
	"strings"
)

// Section is a named content block within a reading that can be individually
// gated. The set of sections is closed: anything outside the declared
// constants is rejected at the boundary, and whether a section belongs to the
// premium tier is a property of the variant itself rather than a separately
// maintained list.
type Section string

// Free-tier sections. Each can be unlocked through the free-unlock path
// while the reading is unpurchased.
const (
	// SectionLove covers the relationship outlook block of a reading.
	SectionLove Section = "love"

	// SectionTimeline covers the life-timeline block of a reading.
	SectionTimeline Section = "timeline"

	// SectionGuidance covers the personal-guidance block of a reading.
	SectionGuidance Section = "guidance"

	// SectionCareer covers the career outlook block of a reading.
	SectionCareer Section = "career"

	// SectionModals is a synthetic bucket representing several small UI
	// panels that are unlocked together as a single unit.
	SectionModals Section = "modals"
)

// Premium sections. These are never reachable through the free-unlock path;
// they require a purchased reading regardless of the free-unlock counter.
const (
	// SectionDeepRelationship is the in-depth relationship analysis block.
	SectionDeepRelationship Section = "deep_relationship_analysis"

	// SectionCompatibility is the partner-compatibility report block.
	SectionCompatibility Section = "compatibility_report"
)

var allSections = map[Section]bool{
	SectionLove:             false,
	SectionTimeline:         false,
	SectionGuidance:         false,
	SectionCareer:           false,
	SectionModals:           false,
	SectionDeepRelationship: true,
	SectionCompatibility:    true,
}

// ParseSection normalizes raw (trims whitespace, lowercases) and returns the
// matching Section constant. Unknown keys are rejected with an error naming
// the offending value.
func ParseSection(raw string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := allSections[s]; !ok {
		return "", fmt.Errorf("unknown section %q", raw)
	}
	return s, nil
}

// Premium reports whether the section belongs to the premium tier.
// Premium sections require a purchased reading and are never unlockable
// through the free-unlock counter.
func (s Section) Premium() bool {
	return allSections[s]
}

// Valid reports whether the section is a member of the closed section set.
func (s Section) Valid() bool {
	_, ok := allSections[s]
	return ok
}

// String returns the wire form of the section key.
func (s Section) String() string {
	return string(s)
}

// SectionSet is an unordered collection of section keys as persisted on a
// reading record. Insertion order is irrelevant.
type SectionSet []Section

// Contains reports whether section is already a member of the set.
func (set SectionSet) Contains(section Section) bool {
	for _, s := range set {
		if s == section {
			return true
		}
	}
	return false
}

// With returns a copy of the set with section appended. The receiver is not
// modified. Appending a section that is already present returns an equal set.
func (set SectionSet) With(section Section) SectionSet {
	if set.Contains(section) {
		return set
	}
	out := make(SectionSet, 0, len(set)+1)
	out = append(out, set...)
	return append(out, section)
}
