// Package server binds the mixer's command surface over HTTP, in the same
// flat-handler, CORS-wrapped net/http.ServeMux style the teacher used for
// its own worker process, logging its bound port (through the standard
// logger, on stderr) for a parent process to discover.
package server

import (
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/sscholbe/autodj/internal/catalog"
	"github.com/sscholbe/autodj/internal/library"
	"github.com/sscholbe/autodj/internal/mixer"
	"github.com/sscholbe/autodj/internal/planner"
	"github.com/sscholbe/autodj/internal/transition"
)

// Server wires the mixer, song loader and catalog reader to a set of HTTP
// handlers.
type Server struct {
	Mixer   *mixer.Mixer
	Loader  *library.Loader
	Catalog catalog.Catalog
	MinBPM  int
	MaxBPM  int

	mux *http.ServeMux
}

// New builds a Server with all routes registered.
func New(mx *mixer.Mixer, loader *library.Loader, cat catalog.Catalog, minBPM, maxBPM int) *Server {
	s := &Server{Mixer: mx, Loader: loader, Catalog: cat, MinBPM: minBPM, MaxBPM: maxBPM}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("POST /load", s.handleLoad)
	s.mux.HandleFunc("POST /cancel", s.handleCancel)
	s.mux.HandleFunc("POST /queue", s.handleQueue)
	s.mux.HandleFunc("POST /bpm", s.handleBPM)
	s.mux.HandleFunc("GET /catalog/songs", s.handleCatalogSongs)
	s.mux.HandleFunc("GET /catalog/transitions", s.handleCatalogTransitions)
	s.mux.HandleFunc("POST /plan", s.handlePlan)
	return s
}

// corsMiddleware allows any origin, matching the teacher's permissive local
// development CORS policy for a tool with no untrusted-browser exposure.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the HTTP server on addr (":0" picks a random free
// port) and logs the bound port as "PORT:%d" through the standard logger,
// which writes to stderr; stdout is left to the produced audio stream.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("PORT:%d", ln.Addr().(*net.TCPAddr).Port)
	return http.Serve(ln, corsMiddleware(s.mux))
}

type errorKind string

const (
	errDecodeFailure    errorKind = "DecodeFailure"
	errUnanalyzableSong errorKind = "UnanalyzableSong"
	errIllegalCommand   errorKind = "IllegalCommand"
	errBadRequest       errorKind = "BadRequest"
)

func writeError(w http.ResponseWriter, status int, kind errorKind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": string(kind), "message": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// deckStatus is the JSON view of one deck's playback state.
type deckStatus struct {
	Loaded bool    `json:"loaded"`
	File   string  `json:"file,omitempty"`
	Stage  string  `json:"stage"`
	Time   float64 `json:"time"`
}

// handleStatus reports both decks' stages, the FSM stage, the master deck
// and the current global tempo. It only reads deck and FSM state and calls
// no FSM command, so no state is mutated by a status poll.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mixer.Lock()
	defer s.Mixer.Unlock()

	decks := make([]deckStatus, 2)
	for i, d := range s.Mixer.Decks {
		ds := deckStatus{Stage: d.StageNow().String(), Time: d.Time}
		if d.Song != nil {
			ds.Loaded = true
			ds.File = d.Song.File
		}
		decks[i] = ds
	}

	writeJSON(w, map[string]any{
		"fsm_stage":      s.Mixer.FSM.Stage.String(),
		"master_channel": s.Mixer.FSM.MasterChannel().String(),
		"global_bpm":     s.Mixer.GlobalBPM,
		"global_time":    s.Mixer.GlobalTime,
		"decks":          decks,
	})
}

type loadRequest struct {
	File string `json:"file"`
	Dry  bool   `json:"dry"`
}

// handleLoad resolves a song (reusing an already-loaded one with the same
// path when possible) and asks the FSM which deck it would land on,
// applying the load unless Dry is set.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error())
		return
	}

	s.Mixer.Lock()
	existing := s.Mixer.FindLoadedSong(req.File)
	target := s.Mixer.FSM.Load(nil, true)
	s.Mixer.Unlock()

	if target == mixer.Invalid {
		writeError(w, http.StatusConflict, errIllegalCommand, "no deck may be loaded right now")
		return
	}
	if req.Dry {
		writeJSON(w, map[string]string{"target": target.String()})
		return
	}

	resolved := existing
	if resolved == nil {
		loaded, err := s.Loader.Load(r.Context(), req.File)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, errDecodeFailure, err.Error())
			return
		}
		resolved = loaded
	}

	s.Mixer.Lock()
	s.Mixer.FSM.Load(resolved, false)
	s.Mixer.Unlock()

	writeJSON(w, map[string]string{"target": target.String()})
}

type cancelRequest struct {
	Dry bool `json:"dry"`
}

// handleCancel clears a queued-but-not-started transition.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	json.NewDecoder(r.Body).Decode(&req)

	s.Mixer.Lock()
	defer s.Mixer.Unlock()

	target := s.Mixer.FSM.Cancel(true)
	if target == mixer.Invalid {
		writeError(w, http.StatusConflict, errIllegalCommand, "no transition may be cancelled right now")
		return
	}
	if !req.Dry {
		s.Mixer.FSM.Cancel(false)
	}
	writeJSON(w, map[string]string{"target": target.String()})
}

type queuePoint struct {
	TNorm float64 `json:"t"`
	Value float64 `json:"value"`
}

type queueRequest struct {
	ATrans map[string][]queuePoint `json:"a_trans"`
	BTrans map[string][]queuePoint `json:"b_trans"`
	ASel   [2]int                  `json:"a_sel"`
	BSel   [2]int                  `json:"b_sel"`
	Dry    bool                    `json:"dry"`
}

func toDef(m map[string][]queuePoint) transition.Def {
	def := make(transition.Def, len(m))
	for fx, points := range m {
		pts := make([]transition.Point, len(points))
		for i, p := range points {
			pts[i] = transition.Point{TNorm: p.TNorm, Value: p.Value}
		}
		def[fx] = pts
	}
	return def
}

// invertDef mirrors a transition definition so the same asset can describe
// both directions of a chain, matching the reference _invert_transition
// helper for swapping which side is fading in versus out.
func invertDef(def transition.Def) transition.Def {
	out := make(transition.Def, len(def))
	for fx, points := range def {
		inv := make([]transition.Point, len(points))
		for i, p := range points {
			inv[i] = transition.Point{TNorm: 1 - p.TNorm, Value: p.Value}
		}
		out[fx] = inv
	}
	return out
}

// handleQueue installs a requested transition between deck A and deck B,
// always expressed from each deck's own point of view (a_trans/a_sel
// describe A, b_trans/b_sel describe B). Which side is actually the
// transition's source and which is its destination depends on the FSM's
// current direction, so the client-facing a/b pair is remapped to
// src/dst (inverting the deck that becomes the source) exactly the way
// the reference mixer_queue/_invert_transition helpers do.
func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error())
		return
	}

	aTrans := toDef(req.ATrans)
	bTrans := toDef(req.BTrans)

	s.Mixer.Lock()
	defer s.Mixer.Unlock()

	dir := s.Mixer.FSM.Queue(mixer.QueueData{}, true)
	var qd mixer.QueueData
	switch dir {
	case mixer.BToA:
		qd = mixer.QueueData{
			TransitionSrc: invertDef(bTrans), TransitionDst: aTrans,
			SelectionSrc: req.BSel, SelectionDst: req.ASel,
		}
	case mixer.AToB:
		qd = mixer.QueueData{
			TransitionSrc: invertDef(aTrans), TransitionDst: bTrans,
			SelectionSrc: req.ASel, SelectionDst: req.BSel,
		}
	default:
		qd = mixer.QueueData{
			TransitionSrc: aTrans, TransitionDst: bTrans,
			SelectionSrc: req.ASel, SelectionDst: req.BSel,
		}
	}

	stage := s.Mixer.FSM.Queue(qd, true)
	if req.Dry {
		writeJSON(w, map[string]string{"stage": stage.String()})
		return
	}
	s.Mixer.FSM.Queue(qd, false)
	writeJSON(w, map[string]string{"stage": s.Mixer.FSM.Stage.String()})
}

type bpmRequest struct {
	BPM int `json:"bpm"`
}

// handleBPM sets the global tempo after validating it against the
// configured operating range.
func (s *Server) handleBPM(w http.ResponseWriter, r *http.Request) {
	var req bpmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error())
		return
	}
	if req.BPM < s.MinBPM || req.BPM > s.MaxBPM {
		writeError(w, http.StatusBadRequest, errBadRequest, "bpm out of configured range")
		return
	}
	s.Mixer.Lock()
	s.Mixer.GlobalBPM = req.BPM
	s.Mixer.Unlock()
	writeJSON(w, map[string]int{"global_bpm": req.BPM})
}

// handleCatalogSongs lists every song file the catalog can see on disk.
func (s *Server) handleCatalogSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.Catalog.Songs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, errDecodeFailure, err.Error())
		return
	}
	writeJSON(w, songs)
}

// handleCatalogTransitions lists every transition asset file the catalog
// can see on disk.
func (s *Server) handleCatalogTransitions(w http.ResponseWriter, r *http.Request) {
	transitions, err := s.Catalog.Transitions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, errDecodeFailure, err.Error())
		return
	}
	writeJSON(w, transitions)
}

type planRequest struct {
	Files []string `json:"files"`
}

type planTransitionView struct {
	Asset  string `json:"asset"`
	SrcBar int    `json:"src_bar"`
	DstBar int    `json:"dst_bar"`
}

// handlePlan loads every requested song, orders them and chooses a
// transition asset for each adjacent pair, returning a plan the client can
// then feed into a sequence of /load and /queue calls.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error())
		return
	}

	songs, errs := s.Loader.LoadBatch(r.Context(), req.Files)
	for _, err := range errs {
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, errDecodeFailure, err.Error())
			return
		}
	}

	assets, err := s.Catalog.Transitions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, errDecodeFailure, err.Error())
		return
	}

	plan := planner.Build(songs, assets, planner.DefaultWeights(), 5)

	order := make([]string, len(plan.Order))
	for i, sg := range plan.Order {
		order[i] = sg.File
	}
	transitions := make([]planTransitionView, len(plan.Transitions))
	for i, t := range plan.Transitions {
		transitions[i] = planTransitionView{Asset: t.Asset.Name, SrcBar: t.SrcBar, DstBar: t.DstBar}
	}

	writeJSON(w, map[string]any{
		"order":       order,
		"transitions": transitions,
	})
}
