// Package cookie signs the short-lived cookies of the login flow: the OAuth
// state set before redirecting to the forum and the session issued after a
// successful callback.
//
//	m, err := cookie.New(os.Getenv("COOKIE_SECRET"), cookie.WithSecure(true))
//	m.SetSigned(w, "oauth_state", state, 10*time.Minute)
//	state, err := m.GetSigned(r, "oauth_state")
package cookie
