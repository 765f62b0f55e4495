// Package identity maps a remote community member profile onto the fields a
// local account system needs, and decides whether a never-seen member may
// materialize a new local account.
//
// Mapping is a function of the profile and a Policy snapshot, with one side
// effect: every external group the member belongs to is registered through a
// GroupRegistry before Map returns.
//
// Basic usage:
//
//	policy := identity.Policy{
//		AccountCreation: true,
//		EmailDomains:    identity.ParseDomains("example.com, example.org"),
//	}
//	mapper := identity.NewMapper(policy, repo)
//
//	ident, err := mapper.Map(ctx, profile)
//	if err != nil {
//		return err
//	}
//	if !ident.CreationAllowed {
//		// link to an existing account only
//	}
//
// # Domain matching
//
// MatchDomain reports a match when the configured domain occurs anywhere in
// the email after its first character. This is a substring test, not a suffix
// test: "user@evil-example.com" matches "example.com". The rule is kept for
// compatibility with existing deployments; tightening it changes who may
// self-register.
package identity
