package fcm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=test-server-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"multicast_id":123,"success":1,"failure":0}`))
	}))
	defer server.Close()

	client, err := NewClient("test-server-key", server.URL, server.Client())
	require.NoError(t, err)

	result, err := client.Send(context.Background(), Message{
		To:           "device-token-1",
		Notification: Notification{Title: "Order update", Body: "Your laundry was delivered"},
		Data:         map[string]string{"order_id": "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), result["success"])
	assert.Equal(t, "device-token-1", received.To)
	assert.Equal(t, "Order update", received.Notification.Title)
	assert.Equal(t, "abc", received.Data["order_id"])
}

func TestSend_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid registration", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient("test-server-key", server.URL, server.Client())
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Message{To: "device-token-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSend_RequiresToken(t *testing.T) {
	client, err := NewClient("test-server-key", "", nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Message{})
	require.Error(t, err)
}

func TestNewClient_RequiresServerKey(t *testing.T) {
	_, err := NewClient("  ", "", nil)
	require.Error(t, err)
}
