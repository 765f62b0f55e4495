// Package ipb implements the OAuth2 authorization code flow against an Invision
// Community (IPB) forum and the two REST calls needed to obtain a member profile.
//
// A login attempt is a strict chain of three outbound calls:
//
//  1. POST {base}oauth/token/ exchanges the single-use authorization code for a bearer token.
//  2. GET {base}api/core/me with the bearer token returns the id of the signed-in member.
//  3. GET {base}api/core/members/{id}?key={api_key} returns the full member profile,
//     including primary and secondary groups.
//
// The third call is authenticated with a static REST API key instead of the member's
// token. The token proves the forum approved this service to identify the member; the
// API key grants server-to-server read access to the member directory. The key must
// have GET access to individual members.
//
// All endpoint URLs are derived from Config.BaseURL, which must end with a slash.
//
// # Usage
//
//	client, err := ipb.New(ipb.Config{
//		ClientID:     "client-id",
//		ClientSecret: "client-secret",
//		BaseURL:      "https://forum.example/",
//		APIKey:       "rest-api-key",
//		RedirectURL:  "https://app.example/oauth/callback",
//		Scopes:       []string{"profile", "email"},
//	})
//	if err != nil {
//		return err
//	}
//
//	// Redirect the browser.
//	url := client.AuthCodeURL(state)
//
//	// In the callback handler.
//	profile, err := client.FetchProfile(ctx, code)
//
// # Errors
//
// Every failure of the token call wraps ErrTokenExchange and every failure of the
// profile calls wraps ErrProfileFetch, including timeouts. Use errors.Is:
//
//	if errors.Is(err, ipb.ErrTokenExchange) {
//		// bad or expired code, network failure, malformed token response
//	}
//
// # Testing
//
// Use WithHTTPClient to route requests through an httptest server, or point
// Config.BaseURL at the test server directly.
package ipb
