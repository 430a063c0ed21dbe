package redact

import (
	"regexp"
	"slices"
)

// Pattern is a named detector for one kind of sensitive value.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Type        string // Placeholder prefix: [IPV4:hash], [EMAIL:hash], ...
	Description string
}

var (
	ipv4Regex = regexp.MustCompile(`\b(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)

	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// key=value style credentials: api_key=..., token: ..., password="..."
	assignmentRegex = regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|token|secret|password|passwd|pwd)["\s]*[:=]["\s]*[a-zA-Z0-9_\-]{8,}`)

	// Bearer tokens in Authorization headers.
	bearerRegex = regexp.MustCompile(`(?i)\bbearer\s+[a-zA-Z0-9._\-]{16,}`)

	// Provider keys: sk-..., sk-proj-..., sk-ant-...
	openAIKeyRegex = regexp.MustCompile(`\bsk-(?:ant-|proj-)?[A-Za-z0-9_\-]{20,}`)

	// Google API keys (Gemini, Maps, ...): AIza followed by 35 characters.
	googleKeyRegex = regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}\b`)

	awsAccessKeyRegex = regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)

	jwtRegex = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*\b`)

	privateKeyRegex = regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`)

	creditCardRegex = regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`)
)

// BuiltInPatterns contains every available pattern keyed by name.
var BuiltInPatterns = map[string]Pattern{
	"ipv4":        {Name: "ipv4", Regex: ipv4Regex, Type: "IPV4", Description: "IPv4 addresses"},
	"email":       {Name: "email", Regex: emailRegex, Type: "EMAIL", Description: "Email addresses"},
	"api_key":     {Name: "api_key", Regex: assignmentRegex, Type: "SECRET", Description: "key=value credentials"},
	"bearer":      {Name: "bearer", Regex: bearerRegex, Type: "BEARER", Description: "Bearer tokens"},
	"llm_key":     {Name: "llm_key", Regex: openAIKeyRegex, Type: "LLM_KEY", Description: "OpenAI and Anthropic API keys"},
	"google_key":  {Name: "google_key", Regex: googleKeyRegex, Type: "GOOGLE_KEY", Description: "Google API keys"},
	"aws_key":     {Name: "aws_key", Regex: awsAccessKeyRegex, Type: "AWS_KEY", Description: "AWS access key IDs"},
	"jwt":         {Name: "jwt", Regex: jwtRegex, Type: "JWT", Description: "JWT tokens"},
	"private_key": {Name: "private_key", Regex: privateKeyRegex, Type: "PRIVATE_KEY", Description: "Private key headers"},
	"credit_card": {Name: "credit_card", Regex: creditCardRegex, Type: "CC", Description: "Credit card numbers"},
}

// patternOrder fixes the application order. Specific key formats run before
// the generic key=value matcher so they keep their own placeholder type.
var patternOrder = []string{
	"private_key",
	"jwt",
	"llm_key",
	"google_key",
	"aws_key",
	"bearer",
	"api_key",
	"email",
	"ipv4",
	"credit_card",
}

// DefaultPatterns returns the patterns enabled when configuration names none.
func DefaultPatterns() []string {
	return []string{
		"private_key",
		"jwt",
		"llm_key",
		"google_key",
		"aws_key",
		"bearer",
		"api_key",
		"email",
		"ipv4",
	}
}

// GetPatterns returns the named patterns in application order.
// Unknown names are ignored.
func GetPatterns(names []string) []Pattern {
	patterns := make([]Pattern, 0, len(names))
	for _, name := range patternOrder {
		if slices.Contains(names, name) {
			patterns = append(patterns, BuiltInPatterns[name])
		}
	}
	return patterns
}
