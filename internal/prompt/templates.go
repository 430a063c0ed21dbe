package prompt

import (
	"strconv"
	"strings"

	"github.com/bimmerbailey/surprise/internal/llm"
)

// Lead-in phrases. Every prompt of a variant starts with its lead-in.
const (
	leadPressRelease = "Write a press release"
	leadActionPlan   = "Generate a fun action plan"
	leadJoke         = "Tell me a joke about"
	leadHaiku        = "Write a haiku about"
	leadSummary      = "Summarize the following text"
	leadTicTacToe    = "You are playing tic-tac-toe"
	leadMarketBrief  = "Write a short market brief"
)

// LeadIn returns the fixed opening phrase for v.
func LeadIn(v Variant) string {
	switch v {
	case VariantPressRelease:
		return leadPressRelease
	case VariantActionPlan:
		return leadActionPlan
	case VariantJoke:
		return leadJoke
	case VariantHaiku:
		return leadHaiku
	case VariantSummary:
		return leadSummary
	case VariantTicTacToeMove:
		return leadTicTacToe
	case VariantMarketBrief:
		return leadMarketBrief
	default:
		return ""
	}
}

// Build formats r into the instruction text for v.
//
// Build is pure: identical inputs give byte-identical output. Every non-empty
// field of r appears verbatim in the result, which always starts with
// [LeadIn](v). An unknown variant falls back to the subject and detail
// joined by a blank line.
func Build(v Variant, r Request) string {
	var sb strings.Builder

	switch v {
	case VariantPressRelease:
		sb.WriteString(leadPressRelease)
		if r.Subject != "" {
			sb.WriteString(" for ")
			sb.WriteString(r.Subject)
		}
		if r.Detail != "" {
			sb.WriteString(" announcing ")
			sb.WriteString(r.Detail)
		}
		if r.Year != 0 {
			sb.WriteString(" in the year ")
			sb.WriteString(strconv.Itoa(r.Year))
		}
		sb.WriteString(". Include a headline, a dateline, a quote from leadership and a short company boilerplate.")

	case VariantActionPlan:
		sb.WriteString(leadActionPlan)
		if r.Subject != "" {
			sb.WriteString(" for ")
			sb.WriteString(r.Subject)
		}
		sb.WriteString(" based on the following customer feedback: ")
		sb.WriteString(r.Detail)
		sb.WriteString("\nKeep it upbeat, with three to five numbered steps.")

	case VariantJoke:
		sb.WriteString(leadJoke)
		sb.WriteString(" ")
		sb.WriteString(r.Subject)
		sb.WriteString(". Reply with the joke only.")
		appendContext(&sb, r.Detail)

	case VariantHaiku:
		sb.WriteString(leadHaiku)
		sb.WriteString(" ")
		sb.WriteString(r.Subject)
		sb.WriteString(". Use the 5-7-5 syllable form.")
		appendContext(&sb, r.Detail)

	case VariantSummary:
		sb.WriteString(leadSummary)
		if r.Subject != "" {
			sb.WriteString(" about ")
			sb.WriteString(r.Subject)
		}
		sb.WriteString(" in a few sentences:\n\n")
		sb.WriteString(r.Detail)

	case VariantTicTacToeMove:
		sb.WriteString(leadTicTacToe)
		sb.WriteString(" as ")
		sb.WriteString(r.Subject)
		sb.WriteString(". Cells are numbered 1-9 left to right, top to bottom. The board is:\n\n")
		sb.WriteString(r.Detail)
		sb.WriteString("\n\nReply with the number of one empty cell and nothing else.")

	case VariantMarketBrief:
		sb.WriteString(leadMarketBrief)
		sb.WriteString(" for ")
		sb.WriteString(r.Subject)
		if r.Detail != "" {
			sb.WriteString(" using these headlines and prices:\n\n")
			sb.WriteString(r.Detail)
		} else {
			sb.WriteString(".")
		}

	default:
		sb.WriteString(r.Subject)
		if r.Subject != "" && r.Detail != "" {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.Detail)
	}

	if v != VariantPressRelease && r.Year != 0 {
		sb.WriteString("\nYear: ")
		sb.WriteString(strconv.Itoa(r.Year))
	}
	if r.Tone != "" {
		sb.WriteString("\nTone: ")
		sb.WriteString(r.Tone)
		sb.WriteString(".")
	}

	return sb.String()
}

func appendContext(sb *strings.Builder, detail string) {
	if detail != "" {
		sb.WriteString("\nContext: ")
		sb.WriteString(detail)
	}
}

// PressRelease builds the press-release prompt for company, dated year,
// announcing detail.
func PressRelease(company string, year int, detail string) string {
	return Build(VariantPressRelease, Request{Subject: company, Year: year, Detail: detail})
}

// ActionPlan builds the action-plan prompt for product from feedback.
func ActionPlan(product, feedback string) string {
	return Build(VariantActionPlan, Request{Subject: product, Detail: feedback})
}

// Messages returns a system persona for v followed by the built user prompt,
// ready for any llm.Provider.
func Messages(v Variant, r Request) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(v)},
		{Role: llm.RoleUser, Content: Build(v, r)},
	}
}
