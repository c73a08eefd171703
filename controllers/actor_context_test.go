package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hms-backend/middleware"
	"hms-backend/permissions"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireActorMissingContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/reservations", nil)

	_, ok := requireActor(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActorInjected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/reservations", nil)

	branch := uint(3)
	middleware.SetActor(c, permissions.Actor{
		UserID:   7,
		Role:     permissions.RoleBranchAdmin,
		BranchID: &branch,
	})

	actor, ok := requireActor(c)
	require.True(t, ok)
	assert.Equal(t, uint(7), actor.UserID)
	assert.Equal(t, permissions.RoleBranchAdmin, actor.Role)
	require.NotNil(t, actor.BranchID)
	assert.Equal(t, branch, *actor.BranchID)
}
