// Package broker owns the persistent connections: one read loop per open
// websocket, fanning accepted messages out through the group registry.
package broker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"vergissmeinnicht/internal/chat/service"
	"vergissmeinnicht/internal/chat/validator"
	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/dbmysql"
)

// generous enough for a base64-encoded attachment at the media cap
const readLimit = 8 << 20

type Broker struct {
	chatService service.ChatService
	registry    GroupRegistry
	upgrader    websocket.Upgrader
}

func NewBroker(chatService service.ChatService, registry GroupRegistry) *Broker {
	return &Broker{
		chatService: chatService,
		registry:    registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type errorFrame struct {
	Error string `json:"error"`
}

type coinsFrame struct {
	Coins int64 `json:"coins"`
}

// HandleWS serves GET /ws/chats/{chatID}. An unauthenticated caller is
// rejected before the upgrade; no subscription is ever made for it.
func (b *Broker) HandleWS(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatID"]

	claims, err := authenticate(r)
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	conn := newConnection(claims.UserID, claims.Handle, ws)
	conn.start()

	b.registry.Subscribe(chatID, conn)
	log.Printf("ws connected: user %d -> chat %s", conn.UserID, chatID)

	b.readLoop(conn, chatID)
}

// authenticate pulls the JWT from the query string (browser websockets
// cannot set headers) or the Authorization header.
func authenticate(r *http.Request) (*common.Claims, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		parts := strings.Fields(r.Header.Get("Authorization"))
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	return common.ValidToken(token)
}

// readLoop is the per-connection task. Every blocking step happens here and
// suspends only this connection; cleanup on exit is unconditional however
// the loop ends.
func (b *Broker) readLoop(conn *Connection, chatID string) {
	defer func() {
		b.registry.Unsubscribe(chatID, conn)
		conn.Close(websocket.CloseNormalClosure, "")
		log.Printf("ws disconnected: user %d -> chat %s", conn.UserID, chatID)
	}()

	conn.ws.SetReadLimit(readLimit)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Advisory counters warmed from the authoritative store. Counts only
	// grow within a day, so a cached value at the limit can short-circuit;
	// anything below it still goes through the locked re-check in the
	// transaction.
	cache := b.warmQuotaCache(conn)

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))

		var ev validator.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			b.sendError(conn, "bad_event")
			continue
		}

		class := dbmysql.QuotaClassText
		if ev.Media != "" {
			class = dbmysql.QuotaClassMedia
		}
		if cache[class] >= b.chatService.DailyLimit(class) {
			b.sendError(conn, common.ErrorCode(quotaError(class)))
			continue
		}

		payload, coins, err := b.chatService.Send(context.Background(), conn.UserID, conn.Handle, chatID, &ev)
		if err != nil {
			// reported to the originating connection only, never broadcast
			b.sendError(conn, common.ErrorCode(err))
			continue
		}
		cache[class]++

		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("marshal broadcast: %v", err)
			continue
		}
		b.registry.Publish(chatID, data)

		// balance update goes to the sender alone
		if frame, err := json.Marshal(coinsFrame{Coins: coins}); err == nil {
			_ = conn.Deliver(frame)
		}
	}
}

func (b *Broker) warmQuotaCache(conn *Connection) map[dbmysql.QuotaClass]int64 {
	cache := make(map[dbmysql.QuotaClass]int64, 2)
	for _, class := range []dbmysql.QuotaClass{dbmysql.QuotaClassText, dbmysql.QuotaClassMedia} {
		count, err := b.chatService.QuotaUsed(context.Background(), conn.UserID, class)
		if err != nil {
			log.Printf("quota cache warm for user %d: %v", conn.UserID, err)
			continue
		}
		cache[class] = count
	}
	return cache
}

func (b *Broker) sendError(conn *Connection, code string) {
	frame, err := json.Marshal(errorFrame{Error: code})
	if err != nil {
		return
	}
	_ = conn.Deliver(frame)
}

func quotaError(class dbmysql.QuotaClass) error {
	if class == dbmysql.QuotaClassText {
		return common.ErrQuotaExceededText
	}
	return common.ErrQuotaExceededMedia
}
