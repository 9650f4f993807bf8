package secrets

func rule(id, description, severity, pattern string, keywords ...string) Rule {
	return Rule{ID: id, Description: description, Severity: severity, Pattern: pattern, Keywords: keywords}
}

// BuiltinRules returns the built-in credential rules. Prefixed tokens are
// self-identifying and carry no keywords.
func BuiltinRules() []Rule {
	return []Rule{
		rule("aws-access-key-id", "AWS access key ID", "high",
			`\b(A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`),
		rule("aws-secret-access-key", "AWS secret access key", "high",
			`(?i)(?:aws_secret_access_key|aws_secret_key|secret_access_key)\s*[:=]\s*['"]?[A-Za-z0-9/+=]{40}['"]?`, "aws", "secret"),
		rule("generic-api-key", "API key assignment", "high",
			`(?i)(?:api[_-]?key|apikey)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,64}['"]?`, "api", "key"),
		rule("generic-secret", "password or secret assignment", "high",
			`(?i)(?:secret|password|passwd|pwd)\s*[:=]\s*['"]?[^\s'"]{8,}['"]?`, "secret", "password", "passwd", "pwd"),
		rule("private-key", "PEM private key block", "high",
			`-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?:[- ]BLOCK)?-----`),
		rule("github-token", "GitHub token", "high",
			`\b(?:ghp|gho|ghu|ghs)_[A-Za-z0-9]{36}\b|github_pat_[A-Za-z0-9_]{22,}`),
		rule("slack-token", "Slack token", "high", `xox[baprs]-[A-Za-z0-9\-]{10,}`),
		rule("stripe-key", "Stripe API key", "high", `\b(?:sk|pk)_(?:live|test)_[A-Za-z0-9]{24,}`),
		rule("database-url", "connection URL with embedded credentials", "high",
			`(?i)\b(?:postgres|postgresql|mysql|mongodb|redis|amqp)://[^:\s/]+:[^@\s]+@[^\s]+`),
		rule("jwt", "JSON web token", "medium", `\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`),
		rule("google-api-key", "Google API key", "high", `\bAIza[A-Za-z0-9_\-]{35}`),
		rule("model-provider-key", "AI provider API key", "high", `\bsk-(?:ant-[A-Za-z0-9_\-]{90,}|[A-Za-z0-9]{48,})`),
		rule("bearer-token", "bearer token", "medium",
			`(?i)\bbearer\s+[A-Za-z0-9_\-\.]{20,}`, "authorization", "bearer"),
	}
}
