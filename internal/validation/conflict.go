package validation

import (
	"log/slog"
	"regexp"
	"strings"
)

// Conflict metadata is encoded inside the free-text validation notes that
// automated pre-screening attaches to a queue entry. The notes field is the
// single source of truth, so this parser preserves the exact textual
// contract (markers, "Existing:"/"New:" labels, "/"-separated
// contact/email) while exposing a typed descriptor so downstream code never
// re-parses text.

// ConflictKind tags the descriptor variant.
type ConflictKind string

const (
	// KindMismatch covers a potential duplicate whose submitted contact
	// details differ from the on-file profile.
	KindMismatch ConflictKind = "mismatch"
	// KindConflict covers an explicit contact conflict flagged by
	// pre-screening.
	KindConflict ConflictKind = "conflict"
)

// Severity grades how urgently a conflict needs reviewer attention.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ContactInfo is one side of a contact mismatch.
type ContactInfo struct {
	Contact string
	Email   string
}

// IsZero reports whether neither side of the pair was extracted.
func (c ContactInfo) IsZero() bool {
	return c.Contact == "" && c.Email == ""
}

// ConflictDescriptor is the structured form of a detected contact conflict.
// A nil descriptor means "no conflict": absence of markers is a normal
// outcome, not an error.
type ConflictDescriptor struct {
	Kind     ConflictKind
	Existing ContactInfo
	New      ContactInfo
	Severity Severity
	// CrossProfile is set when the submitted contact details are already
	// attached to a different youth profile.
	CrossProfile bool
}

// ProfileRef identifies the colliding profile named in a cross-profile
// conflict note.
type ProfileRef struct {
	Name string
	ID   string
}

// Textual markers written by automated pre-screening. These are a storage
// contract: existing queue entries carry them verbatim.
const (
	markerPotentialDuplicate = "POTENTIAL DUPLICATE"
	markerContactConflict    = "CONTACT CONFLICT"
	markerDifferentContact   = "different contact info"
	markerHighPriority       = "HIGH PRIORITY"
	markerCrossProfile       = "already used by another profile"
)

var (
	// Strict segment patterns require an email-shaped second half.
	existingStrictRe = regexp.MustCompile(`(?i)existing:\s*([^/\n]+?)\s*/\s*([\w.+\-]+@[\w\-]+(?:\.[\w\-]+)+)`)
	newStrictRe      = regexp.MustCompile(`(?i)\bnew:\s*([^/\n]+?)\s*/\s*([\w.+\-]+@[\w\-]+(?:\.[\w\-]+)+)`)

	// Lenient segment boundaries for the fallback split-on-slash path.
	existingSegmentRe = regexp.MustCompile(`(?i)existing:\s*([^\n]*?)(?:\bnew:|$)`)
	newSegmentRe      = regexp.MustCompile(`(?i)\bnew:\s*([^\n]*)`)

	profileRefRe = regexp.MustCompile(`(?i)` + markerCrossProfile + `\s*\(([^,()]+?)(?:,\s*(?:id[:#]?\s*)?([^)]+))?\)`)
)

// ConflictParser extracts conflict descriptors from validation notes.
type ConflictParser struct {
	logger *slog.Logger
}

func NewConflictParser(logger *slog.Logger) *ConflictParser {
	return &ConflictParser{logger: logger}
}

// Parse returns the structured conflict encoded in notes, or nil when no
// conflict markers are present. When markers are present but neither the
// strict nor the lenient pattern recovers either segment, it logs a warning
// and still returns nil: downstream logic reads nil as "no special handling
// required".
func (p *ConflictParser) Parse(notes string) *ConflictDescriptor {
	if notes == "" || !hasConflictMarkers(notes) {
		return nil
	}

	desc := &ConflictDescriptor{
		Kind:         KindMismatch,
		Severity:     SeverityMedium,
		CrossProfile: strings.Contains(notes, markerCrossProfile),
	}
	if strings.Contains(notes, markerContactConflict) {
		desc.Kind = KindConflict
	}
	if strings.Contains(notes, markerHighPriority) {
		desc.Severity = SeverityHigh
	}

	desc.Existing, desc.New = extractSegments(notes)
	if desc.Existing.IsZero() && desc.New.IsZero() {
		p.logger.Warn("conflict markers present but contact segments unparseable",
			"notes_len", len(notes),
		)
		return nil
	}
	return desc
}

// ParseProfileRef recovers the colliding profile's display name and
// identifier from the parenthesized suffix of a cross-profile conflict
// note. Returns nil when the suffix is absent.
func ParseProfileRef(notes string) *ProfileRef {
	m := profileRefRe.FindStringSubmatch(notes)
	if m == nil {
		return nil
	}
	ref := &ProfileRef{Name: strings.TrimSpace(m[1])}
	if len(m) > 2 {
		ref.ID = strings.TrimSpace(m[2])
	}
	if ref.Name == "" {
		return nil
	}
	return ref
}

func hasConflictMarkers(notes string) bool {
	return strings.Contains(notes, markerPotentialDuplicate) ||
		strings.Contains(notes, markerContactConflict) ||
		strings.Contains(notes, markerDifferentContact)
}

// extractSegments tries the strict patterns first and falls back to a
// lenient split on "/" when strict matching does not cover both segments.
func extractSegments(notes string) (existing, updated ContactInfo) {
	exStrict := existingStrictRe.FindStringSubmatch(notes)
	newStrict := newStrictRe.FindStringSubmatch(notes)
	if exStrict != nil && newStrict != nil {
		return ContactInfo{Contact: strings.TrimSpace(exStrict[1]), Email: exStrict[2]},
			ContactInfo{Contact: strings.TrimSpace(newStrict[1]), Email: newStrict[2]}
	}

	if m := existingSegmentRe.FindStringSubmatch(notes); m != nil {
		existing = splitContactEmail(m[1])
	}
	if m := newSegmentRe.FindStringSubmatch(notes); m != nil {
		updated = splitContactEmail(m[1])
	}
	return existing, updated
}

// splitContactEmail handles the lenient "<contact> / <email>" form. The
// email half keeps only its first whitespace-delimited token so trailing
// sentence text does not leak in.
func splitContactEmail(segment string) ContactInfo {
	parts := strings.SplitN(segment, "/", 2)
	info := ContactInfo{Contact: trimToken(parts[0])}
	if len(parts) == 2 {
		email := strings.TrimSpace(parts[1])
		if fields := strings.Fields(email); len(fields) > 0 {
			email = fields[0]
		}
		info.Email = trimToken(email)
	}
	if info.Contact == "" && info.Email == "" {
		return ContactInfo{}
	}
	return info
}

func trimToken(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;")
}
