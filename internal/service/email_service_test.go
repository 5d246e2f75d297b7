package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/pkg/retry"
)

type emailCapture struct {
	mu       sync.Mutex
	requests []map[string]any
	auth     []string
	failNext int
}

func (c *emailCapture) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()

		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)

		if c.failNext > 0 {
			c.failNext--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		c.requests = append(c.requests, payload)
		c.auth = append(c.auth, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("msg-%d", len(c.requests))})
	})
}

func newTestEmailService(serverURL string) *emailService {
	return &emailService{
		config: cfg.Email{
			APIKey:      "re_test",
			APIURL:      serverURL,
			FromAddress: "bot@example.com",
			ApproverTo:  "approver@example.com",
		},
		publicBaseURL: "https://app.example.com",
		client:        http.DefaultClient,
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Multiplier:  2.0,
			MaxDelay:    5 * time.Millisecond,
		},
	}
}

func TestSendApprovalRequest_ContainsActionLinks(t *testing.T) {
	capture := &emailCapture{}
	srv := httptest.NewServer(capture.handler(t))
	defer srv.Close()

	svc := newTestEmailService(srv.URL)
	post := &models.Post{ID: 42, Topic: "Mutexes", Content: "What is a mutex?"}

	msgID, err := svc.SendApprovalRequest(context.Background(), post, "tok123")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msgID)

	require.Len(t, capture.requests, 1)
	req := capture.requests[0]
	assert.Equal(t, "bot@example.com", req["from"])
	assert.Equal(t, []any{"approver@example.com"}, req["to"])
	assert.Equal(t, "Bearer re_test", capture.auth[0])

	body, _ := req["html"].(string)
	for _, action := range []string{"accept", "decline", "retry"} {
		assert.Contains(t, body, "https://app.example.com/approve/42/tok123/"+action)
	}
}

func TestSendApprovalRequest_RetriesTransientFailure(t *testing.T) {
	capture := &emailCapture{failNext: 2}
	srv := httptest.NewServer(capture.handler(t))
	defer srv.Close()

	svc := newTestEmailService(srv.URL)
	post := &models.Post{ID: 1, Topic: "Channels", Content: "body"}

	msgID, err := svc.SendApprovalRequest(context.Background(), post, "tok")
	require.NoError(t, err, "third attempt lands inside the retry budget")
	assert.Equal(t, "msg-1", msgID)
	require.Len(t, capture.requests, 1)
}

func TestSendApprovalRequest_ExhaustsRetryBudget(t *testing.T) {
	capture := &emailCapture{failNext: 10}
	srv := httptest.NewServer(capture.handler(t))
	defer srv.Close()

	svc := newTestEmailService(srv.URL)
	post := &models.Post{ID: 1, Topic: "Channels", Content: "body"}

	_, err := svc.SendApprovalRequest(context.Background(), post, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry budget exhausted")
	assert.Empty(t, capture.requests)
}

func TestSendFailureNotification_IncludesReason(t *testing.T) {
	capture := &emailCapture{}
	srv := httptest.NewServer(capture.handler(t))
	defer srv.Close()

	svc := newTestEmailService(srv.URL)
	post := &models.Post{ID: 7, Topic: "Slices"}

	require.NoError(t, svc.SendFailureNotification(context.Background(), post, "upstream said no"))

	require.Len(t, capture.requests, 1)
	body, _ := capture.requests[0]["html"].(string)
	assert.Contains(t, body, "upstream said no")
	assert.Contains(t, capture.requests[0]["subject"], "Slices")
}
