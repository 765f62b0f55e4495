package identity

import "strings"

// Policy holds the admission rules for members without a local account.
type Policy struct {
	AccountCreation bool
	EmailDomains    []string
}

// ParseDomains splits a comma separated domain list and trims each token.
// An empty or blank setting yields nil, meaning "no restriction".
// Blank tokens inside a non-empty list are kept; they never match.
func ParseDomains(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		domains = append(domains, strings.TrimSpace(p))
	}
	return domains
}

// CreationAllowed reports whether a member with the given email may get a
// new local account.
func (p Policy) CreationAllowed(email string) bool {
	if !p.AccountCreation {
		return false
	}
	if len(p.EmailDomains) == 0 {
		return true
	}
	for _, domain := range p.EmailDomains {
		if MatchDomain(email, domain) {
			return true
		}
	}
	return false
}

// MatchDomain reports whether domain occurs in email at a position greater
// than zero. See the package documentation for the caveats of this rule.
func MatchDomain(email, domain string) bool {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return false
	}
	return strings.Index(email, domain) > 0
}
