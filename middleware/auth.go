package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"hms-backend/permissions"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorContextKey = "actor"

// AuthRequired parses the bearer token and places an explicit Actor
// (user id, role, branch) into the request context. Handlers never read
// ambient session state; everything flows through this Actor.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			utils.JSONError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		actor, err := actorFromClaims(claims)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFromClaims(claims jwt.MapClaims) (permissions.Actor, error) {
	var actor permissions.Actor

	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return actor, fmt.Errorf("token missing user id")
	}
	roleStr, _ := claims["role"].(string)
	role, err := permissions.ParseRole(roleStr)
	if err != nil {
		return actor, fmt.Errorf("token carries unknown role")
	}

	actor.UserID = uint(uid)
	actor.Role = role
	if b, ok := claims["branchId"].(float64); ok && b > 0 {
		branchID := uint(b)
		actor.BranchID = &branchID
	}
	if actor.Role != permissions.RoleSuperAdmin && actor.BranchID == nil {
		return actor, fmt.Errorf("token missing branch for branch-scoped role")
	}
	return actor, nil
}

// ActorFrom pulls the Actor a previous AuthRequired stored.
func ActorFrom(c *gin.Context) (permissions.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return permissions.Actor{}, false
	}
	actor, ok := v.(permissions.Actor)
	return actor, ok
}

// SetActor is a test hook: it injects an Actor without a token.
func SetActor(c *gin.Context, actor permissions.Actor) {
	c.Set(actorContextKey, actor)
}
