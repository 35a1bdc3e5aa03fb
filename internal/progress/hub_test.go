package progress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancer-registry-edits/internal/domain"
)

func TestHub_SubscribeAndFinish(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx := context.Background()

	require.NoError(t, hub.Notify(ctx, domain.NewProgressEvent("job-1", "Running validations...", domain.SeverityInfo)))

	events, cancel := hub.Subscribe("job-1")
	defer cancel()
	assert.Equal(t, 1, hub.Subscribers("job-1"))

	require.NoError(t, hub.Notify(ctx, domain.NewProgressEvent("job-1", "Completed individual item edits (1/3).", domain.SeveritySuccess)))
	require.NoError(t, hub.Notify(ctx, domain.NewProgressEvent("job-2", "other job", domain.SeverityInfo)))
	hub.Finish("job-1")

	var got []string
	for payload := range events {
		got = append(got, string(payload))
	}
	require.Len(t, got, 2, "history replay plus the live event")
	assert.Contains(t, got[0], "Running validations...")
	assert.Contains(t, got[1], `"type":"success"`)
	assert.Equal(t, 0, hub.Subscribers("job-1"))

	// late subscribers of a finished job get the history then a closed channel
	late, _ := hub.Subscribe("job-1")
	var replay int
	for range late {
		replay++
	}
	assert.Equal(t, 2, replay)

	hub.Forget("job-1")
	fresh, cancelFresh := hub.Subscribe("job-1")
	cancelFresh()
	_, open := <-fresh
	assert.False(t, open)
}

func TestHub_ForgetReleasesJob(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2", "job-3"} {
		require.NoError(t, hub.Notify(ctx, domain.NewProgressEvent(id, "Running auto-correction...", domain.SeverityInfo)))
	}
	assert.Equal(t, 3, hub.Jobs())

	hub.Forget("job-2")
	assert.Equal(t, 2, hub.Jobs())

	hub.Forget("job-1")
	hub.Forget("job-3")
	assert.Equal(t, 0, hub.Jobs())
}

func TestHub_ServeWS(t *testing.T) {
	hub := NewHub(quietLogger())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, "job-9")
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("job-9") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Notify(context.Background(), domain.NewProgressEvent("job-9", "Running validations...", domain.SeverityInfo)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, Message{Type: "info", Message: "Running validations..."}, msg)

	hub.Finish("job-9")
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
