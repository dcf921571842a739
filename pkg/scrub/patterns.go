package scrub

import "regexp"

// rule is one compiled (matcher, replacement) pair. Rules apply in slice
// order with global replacement.
type rule struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternEmail       = "email"
	PatternPhone       = "phone"
	PatternSSN         = "ssn"
	PatternCreditCard  = "credit_card"
	PatternIPv4        = "ipv4"
	PatternDateOfBirth = "date_of_birth"

	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternAssignment  = "secret_assignment"
	PatternAWSKey      = "aws_access_key"
	PatternGitHubToken = "github_token"
	PatternPrivateKey  = "private_key"
)

// piiRules returns the built-in PII patterns in their fixed order.
func piiRules() []rule {
	return []rule{
		{
			name:        PatternEmail,
			regex:       regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			replacement: "[EMAIL]",
		},
		{
			name:        PatternPhone,
			regex:       regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
			replacement: "[PHONE]",
		},
		{
			name:        PatternSSN,
			regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			replacement: "[SSN]",
		},
		{
			name:        PatternCreditCard,
			regex:       regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`),
			replacement: "[CARD]",
		},
		{
			name:        PatternIPv4,
			regex:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			replacement: "[IP]",
		},
		{
			name:        PatternDateOfBirth,
			regex:       regexp.MustCompile(`\b(?:\d{4}[-/]\d{2}[-/]\d{2}|\d{2}[-/]\d{2}[-/]\d{4})\b`),
			replacement: "[DOB]",
		},
	}
}

// secretRules returns the built-in credential patterns in their fixed order.
func secretRules() []rule {
	return []rule{
		{
			name:        PatternAPIKey,
			regex:       regexp.MustCompile(`\b(?:sk|pk|rk)-[a-zA-Z0-9_-]{16,}`),
			replacement: "[API_KEY]",
		},
		{
			name:        PatternBearerToken,
			regex:       regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
			replacement: "[TOKEN]",
		},
		{
			name:        PatternAssignment,
			regex:       regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password|passwd|pwd)\s*[=:]\s*\S+`),
			replacement: "$1=[SECRET]",
		},
		{
			name:        PatternAWSKey,
			regex:       regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
			replacement: "[AWS_KEY]",
		},
		{
			name:        PatternGitHubToken,
			regex:       regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}\b`),
			replacement: "[GITHUB_TOKEN]",
		},
		{
			name:        PatternPrivateKey,
			regex:       regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`),
			replacement: "[PRIVATE_KEY]",
		},
	}
}
