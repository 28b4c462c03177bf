package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/utils"
)

func protectedRouter(handler gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", append(mw, handler)...)
	return r
}

func identityHandler(ctx *gin.Context) {
	id, _ := ctx.Get(ContextUserIDKey)
	ctx.JSON(http.StatusOK, gin.H{"user_id": id})
}

func probe(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")
	r := protectedRouter(identityHandler, AuthRequired())

	token, err := utils.GenerateToken(7, "alice", "USER", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, probe(r, "Bearer "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Basic "+token).Code)

	expired, err := utils.GenerateToken(7, "alice", "USER", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+expired).Code)
}

func TestAuthRequiredRejectsRevokedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")
	r := protectedRouter(identityHandler, AuthRequired())

	token, err := utils.GenerateToken(7, "alice", "USER", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, probe(r, "Bearer "+token).Code)

	utils.BlacklistToken(token, time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+token).Code)
}

func TestOptionalAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	r := protectedRouter(func(ctx *gin.Context) {
		_, authed := ctx.Get(ContextUserIDKey)
		ctx.JSON(http.StatusOK, gin.H{"authed": authed})
	}, OptionalAuth())

	// Anonymous and malformed credentials both continue without identity.
	w := probe(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")

	w = probe(r, "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")

	token, err := utils.GenerateToken(7, "alice", "USER", time.Hour)
	require.NoError(t, err)
	w = probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "true")
}

func TestAdminRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")
	r := protectedRouter(identityHandler, AuthRequired(), AdminRequired())

	userToken, err := utils.GenerateToken(1, "user", "USER", time.Hour)
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken(2, "root", "ADMIN", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, probe(r, "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusOK, probe(r, "Bearer "+adminToken).Code)
}
