// Package handler is the HTTP surface around the broker: account signup and
// login, conversation management, history pages and the small lookup APIs.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"vergissmeinnicht/internal/chat/broker"
	"vergissmeinnicht/internal/chat/repository"
	"vergissmeinnicht/internal/chat/service"
	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/user"
)

type contextKey string

const claimsKey contextKey = "claims"

type API struct {
	users       user.Service
	chatService service.ChatService
	store       repository.Store
	keys        repository.KeyRegistry
	gifs        repository.GifCatalog
	broker      *broker.Broker
}

func NewAPI(users user.Service, chatService service.ChatService, store repository.Store,
	keys repository.KeyRegistry, gifs repository.GifCatalog, b *broker.Broker) *API {
	return &API{
		users:       users,
		chatService: chatService,
		store:       store,
		keys:        keys,
		gifs:        gifs,
		broker:      b,
	}
}

// Router wires every route, the websocket endpoint included.
func (a *API) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/users", a.register).Methods("POST")
	router.HandleFunc("/api/login", a.login).Methods("POST")
	router.HandleFunc("/api/gifs", a.listGifs).Methods("GET")

	authed := router.NewRoute().Subrouter()
	authed.Use(a.authMiddleware)
	authed.HandleFunc("/api/chats", a.createChat).Methods("POST")
	authed.HandleFunc("/api/chats", a.listChats).Methods("GET")
	authed.HandleFunc("/api/chats/{chatID}/activate", a.activateChat).Methods("POST")
	authed.HandleFunc("/api/chats/{chatID}/messages", a.history).Methods("GET")
	authed.HandleFunc("/api/keys", a.setPublicKey).Methods("POST")
	authed.HandleFunc("/api/keys/{userID}", a.getPublicKey).Methods("GET")

	// the broker authenticates the websocket itself (token query param)
	router.HandleFunc("/ws/chats/{chatID}", a.broker.HandleWS)

	return router
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Fields(r.Header.Get("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, common.ErrUnauthenticated)
			return
		}
		claims, err := common.ValidToken(parts[1])
		if err != nil {
			writeError(w, common.ErrUnauthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *common.Claims {
	claims, _ := r.Context().Value(claimsKey).(*common.Claims)
	return claims
}

type credentialsRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := a.users.Register(r.Context(), req.Handle, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id": u.UserID,
		"handle":  u.Handle,
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := a.users.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type createChatRequest struct {
	PeerID uint64 `json:"peer_id"`
}

func (a *API) createChat(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := a.store.CreateConversation(r.Context(), claims.UserID, req.PeerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (a *API) listChats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	convs, err := a.store.ConversationsOf(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (a *API) activateChat(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	chatID := mux.Vars(r)["chatID"]

	if err := a.store.ActivateConversation(r.Context(), chatID, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"activated": true})
}

type historyMessage struct {
	ID                    uint64  `json:"id"`
	SenderID              uint64  `json:"sender_id"`
	Category              string  `json:"category"`
	EncryptedMessage      string  `json:"encrypted_message"`
	Media                 *string `json:"media"`
	EncryptedKeyRecipient string  `json:"encrypted_key_recipient"`
	EncryptedKeySender    string  `json:"encrypted_key_sender"`
	IV                    string  `json:"iv"`
	Timestamp             string  `json:"timestamp"`
}

type historyResponse struct {
	Messages []historyMessage `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	chatID := mux.Vars(r)["chatID"]

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	messages, hasMore, err := a.chatService.History(r.Context(), claims.UserID, chatID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := historyResponse{Messages: make([]historyMessage, 0, len(messages)), HasMore: hasMore}
	for _, msg := range messages {
		item := historyMessage{
			ID:                    msg.ID,
			SenderID:              msg.SenderID,
			Category:              string(msg.Category),
			EncryptedMessage:      msg.Ciphertext,
			EncryptedKeyRecipient: msg.EncryptedKeyRecipient,
			EncryptedKeySender:    msg.EncryptedKeySender,
			IV:                    msg.IV,
			Timestamp:             msg.SentAt.UTC().Format(time.RFC3339Nano),
		}
		if msg.MediaURL != "" {
			url := msg.MediaURL
			item.Media = &url
		}
		resp.Messages = append(resp.Messages, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

type setKeyRequest struct {
	PublicKey string `json:"public_key"`
	Algorithm string `json:"algorithm"`
}

func (a *API) setPublicKey(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req setKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicKey == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.keys.SetPublicKey(r.Context(), claims.UserID, req.PublicKey, req.Algorithm); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"stored": true})
}

func (a *API) getPublicKey(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(mux.Vars(r)["userID"], 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	record, err := a.keys.PublicKeyOf(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"public_key": record.KeyData,
		"algorithm":  record.Algorithm,
	})
}

func (a *API) listGifs(w http.ResponseWriter, r *http.Request) {
	gifs, err := a.gifs.ListGifs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gifs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps the taxonomy to HTTP statuses; anything outside it is a
// generic 500 so storage details never leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrQuotaExceededText),
		errors.Is(err, common.ErrQuotaExceededMedia),
		errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrEmptyMessage),
		errors.Is(err, common.ErrBadMedia):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": common.ErrorCode(err)})
}
