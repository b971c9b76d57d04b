package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vergissmeinnicht/internal/chat/service"
	"vergissmeinnicht/internal/chat/validator"
	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/dbmysql"
)

// fakeChatService scripts the pipeline outcome so broker behavior can be
// tested without storage or real policy.
type fakeChatService struct {
	mu        sync.Mutex
	sendCalls int
	sendErr   error
	payload   *service.Broadcast
	coins     int64
	quotaUsed int64
	limit     int64
}

func (f *fakeChatService) Send(ctx context.Context, senderID uint64, senderHandle, conversationID string, ev *validator.Event) (*service.Broadcast, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, 0, f.sendErr
	}
	return f.payload, f.coins, nil
}

func (f *fakeChatService) History(ctx context.Context, userID uint64, conversationID string, page int) ([]*dbmysql.Message, bool, error) {
	return nil, false, nil
}

func (f *fakeChatService) QuotaUsed(ctx context.Context, userID uint64, class dbmysql.QuotaClass) (int64, error) {
	return f.quotaUsed, nil
}

func (f *fakeChatService) DailyLimit(class dbmysql.QuotaClass) int64 {
	return f.limit
}

func (f *fakeChatService) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

func newTestServer(t *testing.T, svc service.ChatService) (*httptest.Server, *MemoryRegistry) {
	registry := NewMemoryRegistry()
	b := NewBroker(svc, registry)

	router := mux.NewRouter()
	router.HandleFunc("/ws/chats/{chatID}", b.HandleWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server, chatID string, userID uint64, handle string) *websocket.Conn {
	token, err := common.GenerateToken(userID, handle)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chats/" + chatID + "?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestHandleWS_RejectsUnauthenticated(t *testing.T) {
	srv, _ := newTestServer(t, &fakeChatService{limit: 100})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chats/conv-1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandleWS_BroadcastReachesAllSubscribersIncludingSender(t *testing.T) {
	media := "http://localhost:8080/media/fid1"
	svc := &fakeChatService{
		limit: 100,
		coins: 12,
		payload: &service.Broadcast{
			Sender:           "alice",
			EncryptedMessage: "ct==",
			Media:            &media,
			IV:               "iv==",
			Timestamp:        "2026-08-30T12:00:00Z",
		},
	}
	srv, _ := newTestServer(t, svc)

	sender := dial(t, srv, "conv-1", 7, "alice")
	peer1 := dial(t, srv, "conv-1", 8, "bob")
	peer2 := dial(t, srv, "conv-1", 8, "bob")

	require.NoError(t, sender.WriteJSON(validator.Event{EncryptedMessage: "ct=="}))

	frames := []map[string]any{
		readFrame(t, sender),
		readFrame(t, peer1),
		readFrame(t, peer2),
	}
	for _, frame := range frames {
		assert.Equal(t, "alice", frame["sender"])
		assert.Equal(t, "ct==", frame["encrypted_message"])
		assert.Equal(t, media, frame["media"])
	}

	// the sender additionally receives its balance, peers do not
	coins := readFrame(t, sender)
	assert.Equal(t, float64(12), coins["coins"])

	require.NoError(t, peer1.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := peer1.ReadMessage()
	assert.Error(t, err, "peers must not receive the coins frame")
}

func TestHandleWS_ErrorGoesToSenderOnly(t *testing.T) {
	svc := &fakeChatService{limit: 100, sendErr: common.ErrInsufficientFunds}
	srv, _ := newTestServer(t, svc)

	sender := dial(t, srv, "conv-1", 7, "alice")
	peer := dial(t, srv, "conv-1", 8, "bob")

	require.NoError(t, sender.WriteJSON(validator.Event{EncryptedMessage: "ct"}))

	frame := readFrame(t, sender)
	assert.Equal(t, "insufficient_funds", frame["error"])

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := peer.ReadMessage()
	assert.Error(t, err, "no broadcast may occur on a failed send")
}

func TestHandleWS_QuotaCacheFastFail(t *testing.T) {
	// authoritative count already at the limit when the connection opens
	svc := &fakeChatService{limit: 5, quotaUsed: 5}
	srv, _ := newTestServer(t, svc)

	sender := dial(t, srv, "conv-1", 7, "alice")
	require.NoError(t, sender.WriteJSON(validator.Event{EncryptedMessage: "ct"}))

	frame := readFrame(t, sender)
	assert.Equal(t, "quota_exceeded_text", frame["error"])
	assert.Equal(t, 0, svc.sends(), "fast-fail must not reach the pipeline")
}

func TestHandleWS_MalformedEventReportsBadEvent(t *testing.T) {
	svc := &fakeChatService{limit: 100, payload: &service.Broadcast{}}
	srv, _ := newTestServer(t, svc)

	sender := dial(t, srv, "conv-1", 7, "alice")
	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("{not json")))

	frame := readFrame(t, sender)
	assert.Equal(t, "bad_event", frame["error"])
	assert.Equal(t, 0, svc.sends())
}

func TestHandleWS_UnsubscribesOnClose(t *testing.T) {
	svc := &fakeChatService{limit: 100, payload: &service.Broadcast{}}
	srv, registry := newTestServer(t, svc)

	ws := dial(t, srv, "conv-9", 7, "alice")
	require.Eventually(t, func() bool { return registry.Size("conv-9") == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return registry.Size("conv-9") == 0 },
		2*time.Second, 10*time.Millisecond, "cleanup must run however the connection ends")
}

func TestHandleWS_SubscriptionsAreRebuiltPerConnection(t *testing.T) {
	svc := &fakeChatService{limit: 100, payload: &service.Broadcast{Sender: "alice"}}
	srv, registry := newTestServer(t, svc)

	for i := 0; i < 3; i++ {
		ws := dial(t, srv, "conv-2", uint64(10+i), fmt.Sprintf("user%d", i))
		require.Eventually(t, func() bool { return registry.Size("conv-2") == 1 },
			2*time.Second, 10*time.Millisecond)
		require.NoError(t, ws.Close())
		require.Eventually(t, func() bool { return registry.Size("conv-2") == 0 },
			2*time.Second, 10*time.Millisecond)
	}
}
