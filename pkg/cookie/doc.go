// Package cookie builds and reads HMAC-signed cookies.
//
// The portal uses it for the session token cookie: the token is signed with the
// application secret so that tampered or forged tokens are rejected before the
// session store is consulted.
//
//	m := cookie.New(secret, cookie.WithSecure(true))
//	m.Write(w, "__sid", token, 30*24*time.Hour)
//	token, err := m.Read(r, "__sid")
package cookie
