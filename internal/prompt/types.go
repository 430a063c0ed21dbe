package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Variant identifies which playground task a prompt is built for.
// Each variant has a fixed lead-in phrase and its own system persona.
type Variant string

const (
	// VariantPressRelease announces Detail on behalf of Subject, optionally
	// dated to Year.
	VariantPressRelease Variant = "press_release"

	// VariantActionPlan turns customer feedback (Detail) about a product
	// (Subject) into a light-hearted plan of action.
	VariantActionPlan Variant = "action_plan"

	// VariantJoke asks for a single joke about Subject.
	VariantJoke Variant = "joke"

	// VariantHaiku asks for a haiku about Subject.
	VariantHaiku Variant = "haiku"

	// VariantSummary summarises the text in Detail.
	VariantSummary Variant = "summary"

	// VariantTicTacToeMove asks for the next move on the board rendered in
	// Detail, playing as Subject ("X" or "O").
	VariantTicTacToeMove Variant = "tictactoe_move"

	// VariantMarketBrief combines a ticker (Subject) and a digest of headlines
	// and prices (Detail) into a short market note.
	VariantMarketBrief Variant = "market_brief"
)

// Variants returns every known variant in a stable order.
func Variants() []Variant {
	return []Variant{
		VariantPressRelease,
		VariantActionPlan,
		VariantJoke,
		VariantHaiku,
		VariantSummary,
		VariantTicTacToeMove,
		VariantMarketBrief,
	}
}

// ParseVariant accepts a variant name in any case, with '-' or '_'.
func ParseVariant(s string) (Variant, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, v := range Variants() {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Request carries the caller-supplied fields interpolated into a prompt.
// Values are opaque text: nothing is escaped or truncated.
type Request struct {
	// Subject is the company, product, topic or player mark.
	Subject string

	// Detail is the free-text body: feedback, announcement, text to
	// summarise, rendered board or market digest.
	Detail string

	// Year dates a press release. Zero means absent.
	Year int

	// Tone is an optional style hint such as "playful" or "formal".
	Tone string
}

var (
	// ErrMissingField is returned by [Validate] when a field required by the
	// variant is blank.
	ErrMissingField = errors.New("prompt: missing required field")

	// ErrUnknownVariant is returned by [ParseVariant] and [Validate].
	ErrUnknownVariant = errors.New("prompt: unknown variant")
)

// missingField wraps [ErrMissingField] with the specific field name.
func missingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// Validate checks that r carries the fields v needs before any request is
// sent. Build itself never fails; Validate is the gate callers put in front
// of the network.
func Validate(v Variant, r Request) error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	switch v {
	case VariantPressRelease:
		if blank(r.Subject) {
			return missingField("company name")
		}
		if blank(r.Detail) {
			return missingField("announcement")
		}
		if r.Year < 0 {
			return fmt.Errorf("%w: year must not be negative", ErrMissingField)
		}
	case VariantActionPlan:
		if blank(r.Subject) {
			return missingField("product name")
		}
		if blank(r.Detail) {
			return missingField("feedback")
		}
	case VariantJoke, VariantHaiku:
		if blank(r.Subject) {
			return missingField("topic")
		}
	case VariantSummary:
		if blank(r.Detail) {
			return missingField("text to summarize")
		}
	case VariantTicTacToeMove:
		if blank(r.Subject) {
			return missingField("mark")
		}
		if blank(r.Detail) {
			return missingField("board")
		}
	case VariantMarketBrief:
		if blank(r.Subject) {
			return missingField("ticker")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
	return nil
}
