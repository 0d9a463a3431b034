package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// DashboardClaims is the JWT payload for dashboard logins. MemberID is
// the Discord member id the moderator authenticated as; role checks
// run against it on every gated operation.
type DashboardClaims struct {
	MemberID  string `json:"memberId"`
	SessionID string `json:"sessionId"`
	jwt.StandardClaims
}
