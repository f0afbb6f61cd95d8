package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/curlyarrow/curlyarrow/pkg/cache"
	appErrors "github.com/curlyarrow/curlyarrow/pkg/errors"
	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
	"github.com/curlyarrow/curlyarrow/pkg/render/structure"
	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
	"github.com/curlyarrow/curlyarrow/pkg/store"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// createSessionRequest is the body for POST /sessions.
type createSessionRequest struct {
	Molfile string `json:"molfile"`
	Name    string `json:"name,omitempty"`
}

// moveRequest is the body for POST /sessions/{id}/moves. Move is one of
// the curved-arrow names: lone-pair-to-bond, bond-to-atom, bond-to-bond,
// homolysis. Atoms lists the atom indices the move touches, donor first.
type moveRequest struct {
	Move  string `json:"move"`
	Atoms []int  `json:"atoms"`
}

// snapshotRequest is the optional body for POST /sessions/{id}/snapshots.
type snapshotRequest struct {
	Name string `json:"name,omitempty"`
}

type atomView struct {
	Index             int    `json:"index"`
	Symbol            string `json:"symbol"`
	Charge            int    `json:"charge"`
	LonePairs         int    `json:"lone_pairs"`
	SingleElectrons   int    `json:"single_electrons"`
	ImplicitHydrogens int    `json:"implicit_hydrogens"`
}

type bondView struct {
	A     int     `json:"a"`
	B     int     `json:"b"`
	Order float64 `json:"order"`
}

type transitionView struct {
	A            int     `json:"a"`
	B            int     `json:"b"`
	Move         string  `json:"move"`
	Direction    string  `json:"direction"`
	Progress     float64 `json:"progress"`
	InitialOrder float64 `json:"initial_order"`
	TargetOrder  float64 `json:"target_order"`
}

// sessionResponse is the full state view returned by session endpoints.
type sessionResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Atoms       []atomView       `json:"atoms"`
	Bonds       []bondView       `json:"bonds"`
	Transitions []transitionView `json:"transitions"`
}

func newTransitionView(t mech.Transition) transitionView {
	return transitionView{
		A:            t.A,
		B:            t.B,
		Move:         t.Kind.String(),
		Direction:    t.Direction.String(),
		Progress:     t.Progress,
		InitialOrder: t.InitialOrder,
		TargetOrder:  t.TargetOrder,
	}
}

// sessionView renders the complete session state. It takes the session
// lock for the duration of the read; callers must not hold it.
func (s *Server) sessionView(ls *liveSession) sessionResponse {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	resp := sessionResponse{
		ID:          ls.id,
		Name:        ls.name,
		CreatedAt:   ls.createdAt,
		Atoms:       make([]atomView, 0, ls.mol.AtomCount()),
		Bonds:       []bondView{},
		Transitions: []transitionView{},
	}
	for i := 0; i < ls.mol.AtomCount(); i++ {
		resp.Atoms = append(resp.Atoms, atomView{
			Index:             i,
			Symbol:            ls.mol.Symbol(i),
			Charge:            ls.sess.Charge(i),
			LonePairs:         ls.sess.LonePairs(i),
			SingleElectrons:   ls.sess.SingleElectrons(i),
			ImplicitHydrogens: ls.mol.ImplicitHydrogens(i),
		})
	}
	for _, b := range ls.mol.Bonds() {
		resp.Bonds = append(resp.Bonds, bondView{A: b.A, B: b.B, Order: b.Order})
	}
	for _, t := range ls.sess.Transitions() {
		resp.Transitions = append(resp.Transitions, newTransitionView(t))
	}
	return resp
}

// =============================================================================
// Session Handlers
// =============================================================================

// handleCreateSession handles POST /api/v1/sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, appErrors.New(appErrors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if err := appErrors.ValidateName(req.Name); err != nil {
		s.respondError(w, err)
		return
	}

	m, err := mol.ParseMolfile(req.Molfile)
	if err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInvalidMolfile, err, "cannot parse molfile"))
		return
	}
	sess, err := mech.NewSession(m)
	if err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInternal, err, "cannot start session"))
		return
	}

	ls := &liveSession{
		id:        uuid.NewString(),
		name:      req.Name,
		createdAt: time.Now().UTC(),
		molfile:   req.Molfile,
		mol:       m,
		sess:      sess,
	}
	s.sessions.add(ls)
	s.logger.Info("session created", "id", ls.id, "atoms", m.AtomCount())

	s.respondJSON(w, http.StatusCreated, s.sessionView(ls))
}

// handleGetSession handles GET /api/v1/sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.sessionView(ls))
}

// handleDeleteSession handles DELETE /api/v1/sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := appErrors.ValidateID(id); err != nil {
		s.respondError(w, err)
		return
	}
	if !s.sessions.remove(id) {
		s.respondError(w, appErrors.New(appErrors.ErrCodeSessionNotFound, "no session with ID %q", id))
		return
	}
	s.logger.Info("session closed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyMove handles POST /api/v1/sessions/{id}/moves. A successful
// move starts its bond transitions and returns the updated state; the
// transitions then animate through the advance loop.
func (s *Server) handleApplyMove(w http.ResponseWriter, r *http.Request) {
	ls, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, appErrors.New(appErrors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	kind, ok := mech.ParseMoveKind(req.Move)
	if !ok {
		s.respondError(w, appErrors.New(appErrors.ErrCodeInvalidMove, "unknown move %q", req.Move))
		return
	}

	ls.mu.Lock()
	err = mech.Apply(ls.sess, kind, req.Atoms)
	ls.mu.Unlock()
	if err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInvalidMove, err, "cannot apply %s", kind))
		return
	}

	s.logger.Info("move applied", "session", ls.id, "move", kind.String(), "atoms", req.Atoms)
	s.respondJSON(w, http.StatusAccepted, s.sessionView(ls))
}

// handleListTransitions handles GET /api/v1/sessions/{id}/transitions.
func (s *Server) handleListTransitions(w http.ResponseWriter, r *http.Request) {
	ls, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	ls.mu.Lock()
	active := ls.sess.Transitions()
	ls.mu.Unlock()

	views := make([]transitionView, 0, len(active))
	for _, t := range active {
		views = append(views, newTransitionView(t))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"transitions": views})
}

// handleRenderSession handles GET /api/v1/sessions/{id}/render.svg.
// ?detailed=true adds lone-pair and radical counts to the atom labels.
func (s *Server) handleRenderSession(w http.ResponseWriter, r *http.Request) {
	ls, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	detailed := r.URL.Query().Get("detailed") == "true"

	ls.mu.Lock()
	dot := structure.ToDOT(ls.mol, ls.sess, structure.Options{Detailed: detailed})
	ls.mu.Unlock()

	// The DOT text captures every visible detail, so its hash keys the
	// finished image. At-rest polling hits; in-flight frames mostly miss
	// because the progress labels change every tick.
	key := cache.Hash([]byte(dot))
	if cached, hit, err := s.renderCache.Get(r.Context(), key); err == nil && hit {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	svg, err := structure.RenderSVG(dot)
	if err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInternal, err, "cannot render structure"))
		return
	}
	if err := s.renderCache.Set(r.Context(), key, svg, renderCacheTTL); err != nil {
		s.logger.Debug("render cache write failed", "err", err)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

// =============================================================================
// Snapshot Handlers
// =============================================================================

// handleSaveSnapshot handles POST /api/v1/sessions/{id}/snapshots.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	ls, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req snapshotRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, appErrors.New(appErrors.ErrCodeInvalidInput, "invalid request body: %v", err))
			return
		}
	}
	if err := appErrors.ValidateName(req.Name); err != nil {
		s.respondError(w, err)
		return
	}

	ls.mu.Lock()
	sn := snapshot.Capture(req.Name, ls.molfile, ls.mol, ls.sess)
	ls.mu.Unlock()

	if err := s.store.Save(r.Context(), sn); err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInternal, err, "cannot save snapshot"))
		return
	}
	s.logger.Info("snapshot saved", "session", ls.id, "snapshot", sn.ID)
	s.respondJSON(w, http.StatusCreated, sn)
}

// handleListSnapshots handles GET /api/v1/snapshots.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInternal, err, "cannot list snapshots"))
		return
	}
	if all == nil {
		all = []snapshot.Snapshot{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"snapshots": all, "count": len(all)})
}

// handleGetSnapshot handles GET /api/v1/snapshots/{id}.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	sn, err := s.loadSnapshot(r, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sn)
}

// handleDeleteSnapshot handles DELETE /api/v1/snapshots/{id}.
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := appErrors.ValidateID(id); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, appErrors.New(appErrors.ErrCodeSnapshotNotFound, "no snapshot with ID %q", id))
			return
		}
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInternal, err, "cannot delete snapshot"))
		return
	}
	s.logger.Info("snapshot deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleRestoreSnapshot handles POST /api/v1/snapshots/{id}/restore. It
// rebuilds the captured state as a fresh live session with a new ID.
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	sn, err := s.loadSnapshot(r, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	m, sess, err := snapshot.Restore(sn)
	if err != nil {
		s.respondError(w, appErrors.Wrap(appErrors.ErrCodeInvalidSnapshot, err, "cannot restore snapshot"))
		return
	}

	ls := &liveSession{
		id:        uuid.NewString(),
		name:      sn.Name,
		createdAt: time.Now().UTC(),
		molfile:   sn.Molfile,
		mol:       m,
		sess:      sess,
	}
	s.sessions.add(ls)
	s.logger.Info("snapshot restored", "snapshot", sn.ID, "session", ls.id)

	s.respondJSON(w, http.StatusCreated, s.sessionView(ls))
}

// =============================================================================
// Helpers
// =============================================================================

// lookup resolves a session ID from the URL to a live session.
func (s *Server) lookup(id string) (*liveSession, error) {
	if err := appErrors.ValidateID(id); err != nil {
		return nil, err
	}
	ls, ok := s.sessions.get(id)
	if !ok {
		return nil, appErrors.New(appErrors.ErrCodeSessionNotFound, "no session with ID %q", id)
	}
	return ls, nil
}

// loadSnapshot fetches a snapshot from the store, translating store
// errors into coded API errors.
func (s *Server) loadSnapshot(r *http.Request, id string) (snapshot.Snapshot, error) {
	if err := appErrors.ValidateID(id); err != nil {
		return snapshot.Snapshot{}, err
	}
	sn, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return snapshot.Snapshot{}, appErrors.New(appErrors.ErrCodeSnapshotNotFound, "no snapshot with ID %q", id)
		}
		return snapshot.Snapshot{}, appErrors.Wrap(appErrors.ErrCodeInternal, err, "cannot load snapshot")
	}
	return sn, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// respondError writes the JSON error envelope. Coded errors carry their
// own code and user message; anything else becomes INTERNAL_ERROR.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := appErrors.GetCode(err)
	if code == "" {
		code = appErrors.ErrCodeInternal
	}
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	s.respondJSON(w, status, map[string]any{
		"error":   true,
		"code":    code,
		"message": appErrors.UserMessage(err),
	})
}

// statusForCode maps machine-readable error codes to HTTP status codes.
// Rejected moves are 422: the request was well-formed, the electron push
// itself is what the engine refused.
func statusForCode(code appErrors.Code) int {
	switch code {
	case appErrors.ErrCodeInvalidInput, appErrors.ErrCodeInvalidMolfile,
		appErrors.ErrCodeInvalidSnapshot, appErrors.ErrCodeInvalidScript,
		appErrors.ErrCodeInvalidID:
		return http.StatusBadRequest
	case appErrors.ErrCodeInvalidMove, appErrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case appErrors.ErrCodeNotFound, appErrors.ErrCodeSessionNotFound,
		appErrors.ErrCodeSnapshotNotFound, appErrors.ErrCodeScriptNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
