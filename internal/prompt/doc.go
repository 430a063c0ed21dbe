// Package prompt formats user-supplied form fields into the instruction text
// sent to a text-generation provider.
//
// # Overview
//
// Each [Variant] is one playground task. Callers fill in a [Request] and call
// [Build] to get the prompt string, or [Messages] to get a system persona
// plus that prompt as a []llm.Message slice ready for any [llm.Provider].
//
// Build is a pure function. It performs no I/O, keeps no counters and never
// fails: the same inputs always produce the same bytes. Every supplied field
// is copied into the output verbatim, and the output starts with the
// variant's fixed lead-in ([LeadIn]):
//
//   - [VariantPressRelease]:  "Write a press release"
//   - [VariantActionPlan]:    "Generate a fun action plan"
//   - [VariantJoke]:          "Tell me a joke about"
//   - [VariantHaiku]:         "Write a haiku about"
//   - [VariantSummary]:       "Summarize the following text"
//   - [VariantTicTacToeMove]: "You are playing tic-tac-toe"
//   - [VariantMarketBrief]:   "Write a short market brief"
//
// Field values are not escaped or truncated. Guarding against prompt
// injection is the caller's responsibility.
//
// # Validation
//
// Empty form fields are rejected with [Validate] before anything is sent:
//
//	req := prompt.Request{Subject: "Acme", Year: 2100, Detail: "space expansion"}
//	if err := prompt.Validate(prompt.VariantPressRelease, req); err != nil {
//	    return err // wraps prompt.ErrMissingField
//	}
//	resp, err := provider.Chat(ctx, prompt.Messages(prompt.VariantPressRelease, req), nil)
package prompt
