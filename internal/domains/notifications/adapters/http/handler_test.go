package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymemory "github.com/societyos/laundry-api/internal/domains/identity/adapters/memory"
	identityapp "github.com/societyos/laundry-api/internal/domains/identity/application"
	identityports "github.com/societyos/laundry-api/internal/domains/identity/ports"
	"github.com/societyos/laundry-api/internal/domains/notifications/application"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

type fakePusher struct {
	lastToken string
	lastTitle string
	err       error
}

func (p *fakePusher) Push(_ context.Context, token, title, _ string, _ map[string]string) (map[string]any, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.lastToken = token
	p.lastTitle = title
	return map[string]any{"success": float64(1), "failure": float64(0)}, nil
}

func newFixture(t *testing.T, pusher *fakePusher) (*gin.Engine, identityports.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	identity := identityapp.NewService(identitymemory.NewRepository())
	router := gin.New()
	NewHandler(application.NewService(identity, pusher)).Register(router.Group("/api/v1"))
	return router, identity
}

func send(t *testing.T, router *gin.Engine, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSend_Success(t *testing.T) {
	pusher := &fakePusher{}
	router, identity := newFixture(t, pusher)
	ctx := context.Background()
	user, err := identity.RegisterUser(ctx, identityports.RegisterUserInput{
		FullName: "Asha Rao", Phone: "+919800000001", UserType: actor.RoleResident, SocietyID: 12,
	})
	require.NoError(t, err)
	_, err = identity.RegisterDeviceToken(ctx, user.UserID, "device-token-1")
	require.NoError(t, err)

	rec := send(t, router, map[string]any{
		"user_id": user.UserID.String(),
		"title":   "Order update",
		"body":    "Your laundry was delivered",
		"data":    map[string]string{"order_id": "abc"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["fcm_result"].(map[string]any)["success"])
	assert.Equal(t, "device-token-1", pusher.lastToken)
	assert.Equal(t, "Order update", pusher.lastTitle)
}

func TestSend_NoTokenOnFileIs404(t *testing.T) {
	router, identity := newFixture(t, &fakePusher{})
	user, err := identity.RegisterUser(context.Background(), identityports.RegisterUserInput{
		FullName: "Asha Rao", Phone: "+919800000001", UserType: actor.RoleResident, SocietyID: 12,
	})
	require.NoError(t, err)

	rec := send(t, router, map[string]any{"user_id": user.UserID.String(), "title": "t", "body": "b"})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No FCM token found"}`, rec.Body.String())
}

func TestSend_UnknownUserIs404(t *testing.T) {
	router, _ := newFixture(t, &fakePusher{})

	rec := send(t, router, map[string]any{"user_id": uuid.NewString(), "title": "t", "body": "b"})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No FCM token found"}`, rec.Body.String())
}

func TestSend_ProviderFailureIs500(t *testing.T) {
	pusher := &fakePusher{err: errors.New("fcm unreachable")}
	router, identity := newFixture(t, pusher)
	ctx := context.Background()
	user, err := identity.RegisterUser(ctx, identityports.RegisterUserInput{
		FullName: "Asha Rao", Phone: "+919800000001", UserType: actor.RoleResident, SocietyID: 12,
	})
	require.NoError(t, err)
	_, err = identity.RegisterDeviceToken(ctx, user.UserID, "device-token-1")
	require.NoError(t, err)

	rec := send(t, router, map[string]any{"user_id": user.UserID.String(), "title": "t", "body": "b"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "fcm unreachable")
}

func TestSend_InvalidUserID(t *testing.T) {
	router, _ := newFixture(t, &fakePusher{})

	rec := send(t, router, map[string]any{"user_id": "not-a-uuid", "title": "t", "body": "b"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
