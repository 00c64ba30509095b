package common

// DefaultSessionCookieName is the cookie carrying the signed session token.
const DefaultSessionCookieName = "session"

// CodeDigits is the length of a one-time verification code.
const CodeDigits = 6
