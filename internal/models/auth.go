package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the payload of externally issued access tokens.
// The admin flag is the custom claim mirrored by the claim synchronizer.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Actor identifies the caller of a booking operation.
type Actor struct {
	ID          string
	DisplayName string
	Admin       bool
}

// ActorFromClaims derives the booking actor from validated token claims.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{ID: claims.UserID, DisplayName: claims.FullName, Admin: claims.Admin}
}
