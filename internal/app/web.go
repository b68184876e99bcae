package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/inertial_nav/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// webServer caches the latest pose and guidance from the broker and pushes
// guidance to websocket clients.
type webServer struct {
	publish     publishFunc
	topicTarget string

	mu           sync.RWMutex
	pose         PoseMessage
	havePose     bool
	guidance     GuidanceMessage
	haveGuidance bool

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

func newWebServer(publish publishFunc, topicTarget string) *webServer {
	return &webServer{
		publish:     publish,
		topicTarget: topicTarget,
		clients:     map[*websocket.Conn]struct{}{},
	}
}

func (s *webServer) routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pose", s.handlePose)
	mux.HandleFunc("/api/guidance", s.handleGuidance)
	mux.HandleFunc("/api/target", s.handleTarget)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

func (s *webServer) setPose(m PoseMessage) {
	s.mu.Lock()
	s.pose = m
	s.havePose = true
	s.mu.Unlock()
}

func (s *webServer) setGuidance(m GuidanceMessage) {
	s.mu.Lock()
	s.guidance = m
	s.haveGuidance = true
	s.mu.Unlock()

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(m); err != nil {
			log.Printf("web: websocket write error: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (s *webServer) handlePose(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.havePose {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.pose)
}

func (s *webServer) handleGuidance(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveGuidance {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.guidance)
}

// handleTarget forwards a target request to the navigator, tagging it with an ID.
func (s *webServer) handleTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid target: %v", err), http.StatusBadRequest)
		return
	}
	if !req.Clear && req.ID == "" {
		req.ID = uuid.NewString()
	}

	if err := s.publish(s.topicTarget, req); err != nil {
		log.Printf("web: %v", err)
		http.Error(w, "failed to forward target", http.StatusBadGateway)
		return
	}
	log.Printf("web: forwarded target %+v", req)
	writeJSON(w, http.StatusAccepted, req)
}

// handleWS streams every guidance message, starting with the latest one.
func (s *webServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	s.mu.RLock()
	latest, have := s.guidance, s.haveGuidance
	s.mu.RUnlock()

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	if have {
		if err := conn.WriteJSON(latest); err != nil {
			log.Printf("web: websocket write error: %v", err)
		}
	}
	s.clientsMu.Unlock()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.clientsMu.Lock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
	}
	s.clientsMu.Unlock()
}

func RunWeb() error {
	cfg := config.Get()

	client, err := connectMQTT("web", cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	s := newWebServer(commandPublisher(client), cfg.TopicTarget)

	if err := subscribeJSON(client, "web", cfg.TopicPose, s.setPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, "web", cfg.TopicGuidance, s.setGuidance); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, s.routes("web"))
}
