package validation

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConflictParserSuite struct {
	suite.Suite
	parser *ConflictParser
}

func TestConflictParserSuite(t *testing.T) {
	suite.Run(t, new(ConflictParserSuite))
}

func (s *ConflictParserSuite) SetupTest() {
	s.parser = NewConflictParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ConflictParserSuite) TestRoundTrip() {
	notes := "POTENTIAL DUPLICATE: same person submitted with different contact info. " +
		"Existing: 09171234567 / old@example.com. New: 09179876543 / new@example.com."

	desc := s.parser.Parse(notes)
	s.Require().NotNil(desc)
	s.Equal(KindMismatch, desc.Kind)
	s.Equal("09171234567", desc.Existing.Contact)
	s.Equal("old@example.com", desc.Existing.Email)
	s.Equal("09179876543", desc.New.Contact)
	s.Equal("new@example.com", desc.New.Email)
	s.Equal(SeverityMedium, desc.Severity)
	s.False(desc.CrossProfile)
}

func (s *ConflictParserSuite) TestNoMarkersReturnsNil() {
	s.Nil(s.parser.Parse("no special markers here"))
	s.Nil(s.parser.Parse(""))
	s.Nil(s.parser.Parse("reviewed manually, all details match the voter list"))
}

func (s *ConflictParserSuite) TestConflictKindAndSeverity() {
	notes := "CONTACT CONFLICT - HIGH PRIORITY. " +
		"Existing: 09170000001 / a@example.com. New: 09170000002 / b@example.com."

	desc := s.parser.Parse(notes)
	s.Require().NotNil(desc)
	s.Equal(KindConflict, desc.Kind)
	s.Equal(SeverityHigh, desc.Severity)
}

func (s *ConflictParserSuite) TestCrossProfileFlag() {
	notes := "CONTACT CONFLICT: the new number is already used by another profile " +
		"(Juan Dela Cruz, ID: 4f2d9c1e). Existing: 09171111111 / juan@example.com. " +
		"New: 09172222222 / dela@example.com."

	desc := s.parser.Parse(notes)
	s.Require().NotNil(desc)
	s.True(desc.CrossProfile)
}

func (s *ConflictParserSuite) TestLenientFallback() {
	// No email on the existing side defeats the strict pattern; the lenient
	// split still recovers both segments.
	notes := "POTENTIAL DUPLICATE, different contact info. " +
		"Existing: 09171234567 / none. New: 09179876543 / new@example.com."

	desc := s.parser.Parse(notes)
	s.Require().NotNil(desc)
	s.Equal("09171234567", desc.Existing.Contact)
	s.Equal("none", desc.Existing.Email)
	s.Equal("09179876543", desc.New.Contact)
	s.Equal("new@example.com", desc.New.Email)
}

func (s *ConflictParserSuite) TestMarkersWithoutSegmentsYieldNil() {
	// Markers alone with nothing extractable must yield nil, not an error:
	// downstream treats nil as "no special handling required".
	s.Nil(s.parser.Parse("POTENTIAL DUPLICATE detected by automated screening"))
	s.Nil(s.parser.Parse("CONTACT CONFLICT"))
}

func (s *ConflictParserSuite) TestParseProfileRef() {
	notes := "already used by another profile (Maria Clara, ID: 7c1b33a0)"
	ref := ParseProfileRef(notes)
	s.Require().NotNil(ref)
	s.Equal("Maria Clara", ref.Name)
	s.Equal("7c1b33a0", ref.ID)

	s.Nil(ParseProfileRef("already used by another profile"))
	s.Nil(ParseProfileRef("nothing relevant"))
}

func (s *ConflictParserSuite) TestParseProfileRefNameOnly() {
	ref := ParseProfileRef("already used by another profile (Jose Rizal)")
	s.Require().NotNil(ref)
	s.Equal("Jose Rizal", ref.Name)
	s.Empty(ref.ID)
}
