package common

// SessionCookieName is the cookie that carries the session token between
// /login and the credential endpoints.
const SessionCookieName = "sitevault_session"

// SessionTokenHeaderName is the response header /login uses to return the
// session token to clients that do not keep cookies.
const SessionTokenHeaderName = "X-Session-Token"
