package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"task-management-api/internal/auth"
	"task-management-api/internal/models"
	"task-management-api/internal/services"
	"task-management-api/internal/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// TokenCookie is the name of the auth cookie set on login.
const TokenCookie = "token"

// Context keys set by JWTAuthMiddleware.
const (
	ContextUserID   = "user_id"
	ContextIsAdmin  = "is_admin"
	ContextTokenID  = "token_id"
	ContextTokenExp = "token_exp"
)

const msgInvalidToken = "Invalid or expired token"

// AccountLookup loads the stored account behind a token.
type AccountLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// JWTAuthMiddleware validates the JWT carried in the auth cookie, the
// Authorization header or the token query parameter, in that order.
func JWTAuthMiddleware(tokens *auth.TokenManager, denylist session.Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Not authorized. Try login again.")
			return
		}
		claims, status := verify(c, tokens, denylist, tokenString)
		if claims == nil {
			msg := msgInvalidToken
			if status == http.StatusInternalServerError {
				msg = "Internal server error."
			}
			abort(c, status, msg)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth behaves like JWTAuthMiddleware when a usable token is
// present and lets the request through anonymously otherwise.
func OptionalAuth(tokens *auth.TokenManager, denylist session.Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if claims, _ := verify(c, tokens, denylist, tokenString); claims != nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// ActiveAccount checks the token's user against the store: missing or
// deactivated accounts are rejected and the admin flag is taken from the
// stored record. Anonymous requests pass through untouched.
func ActiveAccount(accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.Next()
			return
		}
		user, err := accounts.Get(c.Request.Context(), userID)
		switch {
		case errors.Is(err, services.ErrNotFound):
			abort(c, http.StatusUnauthorized, "Not authorized. Try login again.")
			return
		case err != nil:
			log.WithError(err).Error("account lookup failed")
			abort(c, http.StatusInternalServerError, "Internal server error.")
			return
		case !user.IsActive:
			abort(c, http.StatusUnauthorized, "User account has been deactivated, contact the administrator")
			return
		}
		c.Set(ContextIsAdmin, user.IsAdmin)
		c.Next()
	}
}

// AdminOnly rejects requests whose token does not belong to an admin.
// It must run after JWTAuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			abort(c, http.StatusUnauthorized, "Not authorized as admin. Try login as admin.")
			return
		}
		c.Next()
	}
}

// TokenRemaining returns how long the request's token stays valid.
func TokenRemaining(c *gin.Context) time.Duration {
	exp := c.GetTime(ContextTokenExp)
	if exp.IsZero() {
		return 0
	}
	return time.Until(exp)
}

func tokenFromRequest(c *gin.Context) string {
	tokenString, _ := c.Cookie(TokenCookie)
	if tokenString == "" {
		// Extract token from "Bearer <token>"
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	// Fallback for WebSocket/browser where custom headers cannot be set
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

// verify returns the claims of a valid, unrevoked token, or nil and the
// status to answer with.
func verify(c *gin.Context, tokens *auth.TokenManager, denylist session.Denylist, tokenString string) (*auth.Claims, int) {
	claims, err := tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, http.StatusUnauthorized
	}
	if denylist != nil {
		revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.WithError(err).Error("denylist lookup failed")
			return nil, http.StatusInternalServerError
		}
		if revoked {
			return nil, http.StatusUnauthorized
		}
	}
	return claims, http.StatusOK
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextIsAdmin, claims.IsAdmin)
	c.Set(ContextTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExp, claims.ExpiresAt.Time)
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"status": false, "message": msg})
}
