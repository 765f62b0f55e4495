// Package web exposes the forum login over HTTP.
//
// Routes:
//
//	GET  /oauth/login                 redirect to the forum with a signed state cookie
//	GET  /oauth/callback              exchange the code, resolve the local account
//	POST /users/{id}/oauth2/unlink    clear the forum link of the signed-in user
//	GET  /health/live, /health/ready  probes
package web
