package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/curlyarrow/curlyarrow/pkg/cache"
	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
	"github.com/curlyarrow/curlyarrow/pkg/store"
)

const hbrMol = `hydrogen bromide
  curlyarrow

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 Br  0  0  0  0  0  0  0  0  0  0  0  0
    1.4000    0.0000    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  END
`

const ethaneMol = `ethane
  curlyarrow

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.5000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  END
`

// errorEnvelope matches the JSON body respondError writes.
type errorEnvelope struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newTestServer builds a server with a large step so transitions settle
// in two ticks, plus an httptest listener over its handler. The advance
// loop is not running; tests call tick by hand.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{
		Step:   0.5,
		Store:  store.NewMemory(),
		Logger: log.New(io.Discard),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// do performs one JSON request and returns the status and raw body.
func do(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode response %s: %v", data, err)
	}
	return v
}

func createSession(t *testing.T, ts *httptest.Server, molfile string) sessionResponse {
	t.Helper()
	status, body := do(t, http.MethodPost, ts.URL+"/api/v1/sessions",
		createSessionRequest{Molfile: molfile})
	if status != http.StatusCreated {
		t.Fatalf("create session: status = %d, body %s", status, body)
	}
	return decode[sessionResponse](t, body)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := do(t, http.MethodGet, ts.URL+"/health", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !bytes.Contains(body, []byte("ok")) {
		t.Errorf("body = %s, want an ok status", body)
	}
}

func TestCreateAndGetSession(t *testing.T) {
	_, ts := newTestServer(t)

	created := createSession(t, ts, hbrMol)
	if created.ID == "" {
		t.Fatal("created session has no ID")
	}
	if len(created.Atoms) != 2 {
		t.Fatalf("atoms = %d, want 2", len(created.Atoms))
	}
	if created.Atoms[0].Symbol != "Br" || created.Atoms[1].Symbol != "H" {
		t.Errorf("symbols = %s, %s, want Br, H", created.Atoms[0].Symbol, created.Atoms[1].Symbol)
	}
	if created.Atoms[0].LonePairs != 3 {
		t.Errorf("Br lone pairs = %d, want 3", created.Atoms[0].LonePairs)
	}
	if len(created.Bonds) != 1 || created.Bonds[0].Order != 1 {
		t.Errorf("bonds = %v, want one single bond", created.Bonds)
	}
	if len(created.Transitions) != 0 {
		t.Errorf("new session has %d transitions, want 0", len(created.Transitions))
	}

	status, body := do(t, http.MethodGet, ts.URL+"/api/v1/sessions/"+created.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("get session: status = %d, body %s", status, body)
	}
	got := decode[sessionResponse](t, body)
	if got.ID != created.ID {
		t.Errorf("ID = %s, want %s", got.ID, created.ID)
	}
}

func TestCreateSessionRejectsBadMolfile(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := do(t, http.MethodPost, ts.URL+"/api/v1/sessions",
		createSessionRequest{Molfile: "not a molfile"})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	env := decode[errorEnvelope](t, body)
	if env.Code != "INVALID_MOLFILE" {
		t.Errorf("code = %s, want INVALID_MOLFILE", env.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := do(t, http.MethodGet, ts.URL+"/api/v1/sessions/no-such-session", nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	env := decode[errorEnvelope](t, body)
	if env.Code != "SESSION_NOT_FOUND" {
		t.Errorf("code = %s, want SESSION_NOT_FOUND", env.Code)
	}
}

func TestUnsafeIDRejected(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := do(t, http.MethodGet, ts.URL+"/api/v1/sessions/a..b", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	env := decode[errorEnvelope](t, body)
	if env.Code != "INVALID_ID" {
		t.Errorf("code = %s, want INVALID_ID", env.Code)
	}
}

func TestApplyMoveLifecycle(t *testing.T) {
	s, ts := newTestServer(t)

	created := createSession(t, ts, hbrMol)
	base := ts.URL + "/api/v1/sessions/" + created.ID

	// Heterolysis: the bonding pair collapses onto the bromine.
	status, body := do(t, http.MethodPost, base+"/moves",
		moveRequest{Move: "bond-to-atom", Atoms: []int{1, 0}})
	if status != http.StatusAccepted {
		t.Fatalf("apply move: status = %d, body %s", status, body)
	}
	moved := decode[sessionResponse](t, body)
	if got := moved.Atoms[0].Charge; got != -1 {
		t.Errorf("Br charge after move = %d, want -1", got)
	}
	if got := moved.Atoms[1].Charge; got != 1 {
		t.Errorf("H charge after move = %d, want 1", got)
	}
	if len(moved.Transitions) != 1 {
		t.Fatalf("transitions = %d, want 1", len(moved.Transitions))
	}
	tr := moved.Transitions[0]
	if tr.Move != "bond-to-atom" || tr.Direction != "decrease" {
		t.Errorf("transition = %s/%s, want bond-to-atom/decrease", tr.Move, tr.Direction)
	}
	if tr.Progress != 0 {
		t.Errorf("fresh transition progress = %v, want 0", tr.Progress)
	}
	// The order does not change until the transition settles.
	if moved.Bonds[0].Order != 1 {
		t.Errorf("bond order mid-flight = %v, want 1", moved.Bonds[0].Order)
	}

	// Two ticks at step 0.5 settle the transition.
	s.tick()
	s.tick()

	status, body = do(t, http.MethodGet, base+"/transitions", nil)
	if status != http.StatusOK {
		t.Fatalf("list transitions: status = %d", status)
	}
	after := decode[struct {
		Transitions []transitionView `json:"transitions"`
	}](t, body)
	if len(after.Transitions) != 0 {
		t.Errorf("transitions after settling = %d, want 0", len(after.Transitions))
	}

	_, body = do(t, http.MethodGet, base, nil)
	settled := decode[sessionResponse](t, body)
	if settled.Bonds[0].Order != 0 {
		t.Errorf("bond order after settling = %v, want 0", settled.Bonds[0].Order)
	}
}

func TestApplyMoveRejected(t *testing.T) {
	_, ts := newTestServer(t)

	created := createSession(t, ts, ethaneMol)
	base := ts.URL + "/api/v1/sessions/" + created.ID

	// A neutral carbon has no lone pair to push.
	status, body := do(t, http.MethodPost, base+"/moves",
		moveRequest{Move: "lone-pair-to-bond", Atoms: []int{0, 1}})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", status, body)
	}
	env := decode[errorEnvelope](t, body)
	if env.Code != "INVALID_MOVE" {
		t.Errorf("code = %s, want INVALID_MOVE", env.Code)
	}

	status, body = do(t, http.MethodPost, base+"/moves",
		moveRequest{Move: "sigmatropic", Atoms: []int{0, 1}})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("unknown move: status = %d, body %s", status, body)
	}
}

func TestDeleteSession(t *testing.T) {
	_, ts := newTestServer(t)

	created := createSession(t, ts, hbrMol)
	url := ts.URL + "/api/v1/sessions/" + created.ID

	status, _ := do(t, http.MethodDelete, url, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", status)
	}
	status, _ = do(t, http.MethodGet, url, nil)
	if status != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", status)
	}
	status, _ = do(t, http.MethodDelete, url, nil)
	if status != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", status)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	s, ts := newTestServer(t)

	created := createSession(t, ts, hbrMol)
	base := ts.URL + "/api/v1/sessions/" + created.ID

	status, body := do(t, http.MethodPost, base+"/moves",
		moveRequest{Move: "bond-to-atom", Atoms: []int{1, 0}})
	if status != http.StatusAccepted {
		t.Fatalf("apply move: status = %d, body %s", status, body)
	}
	s.tick()
	s.tick()

	status, body = do(t, http.MethodPost, base+"/snapshots",
		snapshotRequest{Name: "after heterolysis"})
	if status != http.StatusCreated {
		t.Fatalf("save snapshot: status = %d, body %s", status, body)
	}
	sn := decode[snapshot.Snapshot](t, body)
	if sn.ID == "" {
		t.Fatal("snapshot has no ID")
	}
	if sn.Name != "after heterolysis" {
		t.Errorf("name = %q, want %q", sn.Name, "after heterolysis")
	}

	status, body = do(t, http.MethodGet, ts.URL+"/api/v1/snapshots", nil)
	if status != http.StatusOK {
		t.Fatalf("list snapshots: status = %d", status)
	}
	list := decode[struct {
		Count int `json:"count"`
	}](t, body)
	if list.Count != 1 {
		t.Errorf("count = %d, want 1", list.Count)
	}

	status, body = do(t, http.MethodPost, ts.URL+"/api/v1/snapshots/"+sn.ID+"/restore", nil)
	if status != http.StatusCreated {
		t.Fatalf("restore: status = %d, body %s", status, body)
	}
	restored := decode[sessionResponse](t, body)
	if restored.ID == created.ID {
		t.Error("restore reused the original session ID")
	}
	if got := restored.Atoms[0].Charge; got != -1 {
		t.Errorf("restored Br charge = %d, want -1", got)
	}
	if restored.Bonds[0].Order != 0 {
		t.Errorf("restored bond order = %v, want 0", restored.Bonds[0].Order)
	}

	status, _ = do(t, http.MethodDelete, ts.URL+"/api/v1/snapshots/"+sn.ID, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete snapshot: status = %d, want 204", status)
	}
	status, body = do(t, http.MethodGet, ts.URL+"/api/v1/snapshots/"+sn.ID, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", status)
	}
	env := decode[errorEnvelope](t, body)
	if env.Code != "SNAPSHOT_NOT_FOUND" {
		t.Errorf("code = %s, want SNAPSHOT_NOT_FOUND", env.Code)
	}
}

func TestRenderSessionCached(t *testing.T) {
	rc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	s := New(Config{
		Step:        0.5,
		Store:       store.NewMemory(),
		RenderCache: rc,
		Logger:      log.New(io.Discard),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	created := createSession(t, ts, ethaneMol)
	url := ts.URL + "/api/v1/sessions/" + created.ID + "/render.svg"

	get := func() (*http.Response, []byte) {
		t.Helper()
		resp, err := http.Get(url)
		if err != nil {
			t.Fatalf("GET render.svg: %v", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return resp, body
	}

	first, firstBody := get()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", first.StatusCode)
	}
	if got := first.Header.Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", got)
	}
	if got := first.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if !bytes.Contains(firstBody, []byte("<svg")) {
		t.Errorf("body does not look like SVG: %.80s", firstBody)
	}

	// The session is at rest, so the DOT is unchanged and the second
	// request serves the stored image.
	second, secondBody := get()
	if got := second.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if !bytes.Equal(firstBody, secondBody) {
		t.Error("cached body differs from rendered body")
	}
}
