package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const CookieName = "sid"

// CookieOptions captures the deployment's cookie policy. Domain may name a
// parent domain so sibling services on subdomains share the session.
type CookieOptions struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// SetCookie writes the signed session cookie. The value is the session id
// plus an HMAC over it, so a tampered cookie fails verification before any
// store lookup happens.
func SetCookie(w http.ResponseWriter, id string, secret string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    Sign(id, secret),
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie extracts and verifies the session id from the request. It
// returns ("", false) when the cookie is absent or its signature does not
// check out.
func ReadCookie(r *http.Request, secret string) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return Verify(cookie.Value, secret)
}

// Sign produces "<id>.<base64 hmac-sha256(id)>".
func Sign(id string, secret string) string {
	return id + "." + signature(id, secret)
}

// Verify splits a signed cookie value and checks the HMAC in constant
// time.
func Verify(value string, secret string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(signature(id, secret))) {
		return "", false
	}
	return id, true
}

func signature(id string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
