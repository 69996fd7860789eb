package handlers

import (
	"context"

	"bnbBack/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// ContextWithClaims stores the authenticated caller for the handlers downstream.
func ContextWithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// callerID is the authenticated user id, 0 for anonymous requests.
func callerID(ctx context.Context) int {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return 0
}
