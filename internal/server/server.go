package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/dispatch"
	"github.com/PhucNguyen204/OneBot_V2/internal/bots"
	"github.com/PhucNguyen204/OneBot_V2/internal/commands"
	"github.com/PhucNguyen204/OneBot_V2/pkg/onebot"
)

type AppServer struct {
	db      *sql.DB
	engine  *dispatch.Engine
	bots    *bots.Manager
	mu      sync.RWMutex // protects engine swap + cmdMeta
	evalMu  sync.Mutex   // serialize dispatch (engine counters not goroutine-safe)
	cmdMeta map[string]CommandMeta
}

func NewAppServer(db *sql.DB, eng *dispatch.Engine) *AppServer {
	return &AppServer{
		db:      db,
		engine:  eng,
		bots:    bots.New(24 * time.Hour),
		cmdMeta: make(map[string]CommandMeta),
	}
}

type CommandMeta struct {
	Pattern     string
	Description string
	Reply       string
}

// RegisterRoutes wires HTTP handlers.
func (s *AppServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/bots", s.handleListBots)
	mux.HandleFunc("/api/v1/hits", s.handleListHits)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/commands", s.handleCommands)
}

// Router returns a mux with all routes registered (test convenience).
func (s *AppServer) Router() *http.ServeMux {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *AppServer) currentEngine() *dispatch.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *AppServer) swapEngine(e *dispatch.Engine) {
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
}

// SwapEngine replaces the dispatch engine (startup command loading).
func (s *AppServer) SwapEngine(e *dispatch.Engine) { s.swapEngine(e) }

// SetCommandMeta populates the in-memory metadata map from command specs.
func (s *AppServer) SetCommandMeta(specs []onebot.CommandSpec) {
	m := make(map[string]CommandMeta, len(specs))
	for _, cs := range specs {
		m[cs.Name] = CommandMeta{Pattern: cs.Pattern, Description: cs.Description, Reply: cs.Reply}
	}
	s.mu.Lock()
	s.cmdMeta = m
	s.mu.Unlock()
}

// ---- Handlers ----

func (s *AppServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *AppServer) handleStats(w http.ResponseWriter, r *http.Request) {
	type statsResp struct {
		CommandsEvaluated int     `json:"commands_evaluated"`
		PrefilterHits     int     `json:"prefilter_hits"`
		PrefilterMisses   int     `json:"prefilter_misses"`
		CommandCount      int     `json:"command_count"`
		PrefilterPatterns int     `json:"prefilter_patterns"`
		Selectivity       float64 `json:"prefilter_selectivity"`
	}
	eng := s.currentEngine()
	ce, ph, pm := eng.Stats()
	pf := eng.PrefilterStats()
	writeJSON(w, http.StatusOK, statsResp{
		CommandsEvaluated: ce, PrefilterHits: ph, PrefilterMisses: pm,
		CommandCount:      eng.CommandCount(),
		PrefilterPatterns: pf.PatternCount,
		Selectivity:       pf.EstimatedSelectivity,
	})
}

func (s *AppServer) handleListBots(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.bots.List(limit))
}

func (s *AppServer) handleListHits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 200
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	rows, err := s.db.QueryContext(r.Context(), `SELECT id, occurred_at, platform, user_id, group_id, command_name, params, alt_message FROM command_hits ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()
	type hit struct {
		ID          int64           `json:"id"`
		OccurredAt  time.Time       `json:"occurred_at"`
		Platform    string          `json:"platform"`
		UserID      string          `json:"user_id"`
		GroupID     string          `json:"group_id"`
		CommandName string          `json:"command_name"`
		Params      json.RawMessage `json:"params"`
		AltMessage  string          `json:"alt_message"`
		// Enriched from command metadata
		Pattern     string `json:"pattern,omitempty"`
		Description string `json:"description,omitempty"`
		Reply       string `json:"reply,omitempty"`
	}
	out := []hit{}
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.ID, &h.OccurredAt, &h.Platform, &h.UserID, &h.GroupID, &h.CommandName, &h.Params, &h.AltMessage); err != nil {
			writeErr(w, 500, err)
			return
		}
		s.mu.RLock()
		if meta, ok := s.cmdMeta[h.CommandName]; ok {
			h.Pattern = meta.Pattern
			h.Description = meta.Description
			h.Reply = meta.Reply
		}
		s.mu.RUnlock()
		out = append(out, h)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEvents accepts a OneBot12 event object or an array of events.
func (s *AppServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, 400, err)
		return
	}
	raws, err := splitEventPayload(body)
	if err != nil {
		writeErr(w, 400, err)
		return
	}

	eng := s.currentEngine()
	totalHits := 0
	for _, raw := range raws {
		ev, err := onebot.DecodeEvent(raw)
		if err != nil {
			writeErr(w, 400, err)
			return
		}
		if ev.Self.UserID != "" {
			s.bots.Upsert(bots.FromSelf(ev.Self))
			_ = s.upsertBot(r.Context(), ev.Self)
		}
		eventID, _ := s.insertEvent(r.Context(), ev, raw)
		if !ev.IsMessage() {
			continue
		}
		s.evalMu.Lock()
		res, err := eng.Evaluate(ev.Segments())
		s.evalMu.Unlock()
		if err != nil {
			log.Printf("dispatch error: %v", err)
			continue
		}
		for _, m := range res.Matches {
			totalHits++
			log.Printf("HIT command=%s platform=%s user=%s params=%d", m.Name, ev.Self.Platform, ev.UserID, m.Outcome.ParamCount())
			_ = s.insertHit(r.Context(), ev, m, eventID)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingested": len(raws), "hits": totalHits})
}

// handleCommands supports GET (current counts) and POST (replace commands).
// POST body: { commands: ["yaml...", "yaml..."] }
func (s *AppServer) handleCommands(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		eng := s.currentEngine()
		writeJSON(w, http.StatusOK, map[string]any{"commands": eng.CommandCount()})
		return
	case http.MethodPost:
		var req struct {
			Commands []string `json:"commands"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, 400, err)
			return
		}
		specs := make([]onebot.CommandSpec, 0, len(req.Commands))
		for i, y := range req.Commands {
			cs, err := onebot.LoadCommandYAML([]byte(y))
			if err != nil {
				writeErr(w, 400, fmt.Errorf("command %d: %w", i, err))
				return
			}
			specs = append(specs, cs)
		}
		cmds, err := commands.Compile(specs)
		if err != nil {
			writeErr(w, 400, err)
			return
		}
		newEngine, err := dispatch.FromCommands(cmds, engine.DefaultEngineConfig())
		if err != nil {
			writeErr(w, 500, err)
			return
		}
		s.SetCommandMeta(specs)
		s.swapEngine(newEngine)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "commands": newEngine.CommandCount()})
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

// ---- Persistence ----

func (s *AppServer) upsertBot(ctx context.Context, self onebot.Self) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bots(platform, bot_user_id, last_seen)
        VALUES ($1,$2,$3)
        ON CONFLICT (platform, bot_user_id) DO UPDATE SET last_seen=EXCLUDED.last_seen`,
		self.Platform, self.UserID, time.Now().UTC(),
	)
	return err
}

func (s *AppServer) insertEvent(ctx context.Context, ev onebot.Event, raw []byte) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO events(received_at, platform, event_type, detail_type, event) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		time.Now().UTC(), ev.Self.Platform, ev.Type, ev.DetailType, string(raw)).Scan(&id)
	return id, err
}

func (s *AppServer) insertHit(ctx context.Context, ev onebot.Event, m dispatch.CommandMatch, eventID int64) error {
	params, _ := json.Marshal(m.Outcome.Params())
	_, err := s.db.ExecContext(ctx, `INSERT INTO command_hits(occurred_at, event_id, platform, user_id, group_id, command_name, params, alt_message) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		time.Now().UTC(), eventID, ev.Self.Platform, ev.UserID, ev.GroupID, m.Name, string(params), ev.AltMessage)
	return err
}

// ---- Helpers ----

// splitEventPayload normalizes the request body to a slice of raw event objects.
func splitEventPayload(body []byte) ([]json.RawMessage, error) {
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	switch probe.(type) {
	case map[string]any:
		return []json.RawMessage{json.RawMessage(body)}, nil
	case []any:
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	default:
		return nil, fmt.Errorf("payload must be object or array of objects")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}
