// Command stub-upstream fakes the Telegram Bot API and ip-api.com for local
// runs of notify-server. Point telegram.base_url and geolocation.base_url
// at it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/onegateway/site-notify/internal/pkg/logger"
)

type stub struct {
	nextID atomic.Int64
	log    *logger.Logger
}

func newStub(log *logger.Logger) *stub {
	s := &stub{log: log}
	s.nextID.Store(1000)
	return s
}

func (s *stub) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "stub-upstream"})
	})
	mux.HandleFunc("POST /{bot}/sendMessage", s.handleSendMessage)
	mux.HandleFunc("GET /json/{ip}", s.handleLookup)
	mux.HandleFunc("GET /json/", s.handleLookup)
	return mux
}

// handleSendMessage mimics Telegram: any token starting with "bot" works
// except "botblocked", which answers 403.
func (s *stub) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	bot := r.PathValue("bot")
	if !strings.HasPrefix(bot, "bot") {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error_code": 404, "description": "Not Found"})
		return
	}
	if bot == "botblocked" {
		writeJSON(w, http.StatusForbidden, map[string]any{"ok": false, "error_code": 403, "description": "Forbidden: bot was blocked by the user"})
		return
	}

	var req struct {
		ChatID    string `json:"chat_id"`
		Text      string `json:"text"`
		ParseMode string `json:"parse_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChatID == "" || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: message text is empty"})
		return
	}

	id := s.nextID.Add(1)
	s.log.Info("sendMessage", "chat_id", req.ChatID, "message_id", id, "parse_mode", req.ParseMode, "text", req.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"result": map[string]any{"message_id": id, "date": time.Now().Unix()},
	})
}

// handleLookup mimics ip-api.com. Private and loopback addresses fail the
// way the real service does.
func (s *stub) handleLookup(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	if ip == "" {
		ip = "49.37.0.1"
	}
	if strings.HasPrefix(ip, "10.") || strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "127.") {
		writeJSON(w, http.StatusOK, map[string]string{"status": "fail", "message": "private range", "query": ip})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "success",
		"country":     "India",
		"countryCode": "IN",
		"region":      "MH",
		"regionName":  "Maharashtra",
		"city":        "Pune",
		"query":       ip,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func main() {
	addr := flag.String("addr", "localhost:8089", "listen address")
	flag.Parse()

	log.Println("WARNING: stub-upstream answers with canned data. Local testing only.")

	srv := &http.Server{
		Addr:        *addr,
		Handler:     newStub(logger.New(os.Stderr, logger.DEBUG, false)).routes(),
		ReadTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("stub-upstream listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
