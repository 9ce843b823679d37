package api

import (
	"fmt"
	"strconv"
	"strings"

	"tombola/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const requesterKey = "requester"

// Claims are the bearer token claims. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 bearer tokens issued by the account service
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for tokens signed with secret. An empty issuer skips the issuer check.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses the token and returns the caller it identifies
func (v *TokenVerifier) Verify(tokenString string) (models.Requester, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return models.Requester{}, models.WrapError(models.ErrorKindUnauthorized, err, "invalid bearer token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Requester{}, models.NewError(models.ErrorKindUnauthorized, "token subject is not a user id")
	}

	role := models.Role(claims.Role)
	if role != models.RoleAdmin && role != models.RoleUser {
		return models.Requester{}, models.NewError(models.ErrorKindUnauthorized, "token role %q is not recognized", claims.Role)
	}

	return models.Requester{UserID: userID, Role: role}, nil
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(c, models.NewError(models.ErrorKindUnauthorized, "missing bearer token"))
			return
		}

		requester, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(requesterKey, requester)
		c.Next()
	}
}

// RequireAdmin rejects authenticated callers without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requesterFrom(c).IsAdmin() {
			writeError(c, models.NewError(models.ErrorKindForbidden, "admin role required"))
			return
		}
		c.Next()
	}
}

// requesterFrom returns the caller stored by RequireAuth
func requesterFrom(c *gin.Context) models.Requester {
	value, ok := c.Get(requesterKey)
	if !ok {
		return models.Requester{}
	}
	requester, _ := value.(models.Requester)
	return requester
}

// describeRequester renders a requester for logs
func describeRequester(r models.Requester) string {
	return fmt.Sprintf("%s:%d", r.Role, r.UserID)
}
