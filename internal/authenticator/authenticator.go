// Package authenticator declares the middleware contract the router expects
// from the authentication layer.
package authenticator

import "net/http"

// Authenticator resolves the requesting user before protected handlers run.
type Authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}
