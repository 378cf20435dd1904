package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/foxwhite25/maabridge/internal/bridge"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/resource"
	"github.com/foxwhite25/maabridge/pkg/tasks"
)

// fakeController records appended tasks and answers with scripted state.
type fakeController struct {
	mu       sync.Mutex
	state    bridge.State
	running  bool
	nextID   int32
	appended []string
	reject   string
	items    *resource.Index
}

func (f *fakeController) State() bridge.State { return f.state }
func (f *fakeController) Target() string      { return "127.0.0.1:5555" }
func (f *fakeController) UUID() (string, bool) {
	return "emulator-5554", true
}
func (f *fakeController) Version() string        { return "v4.10.0-test" }
func (f *fakeController) Items() *resource.Index { return f.items }
func (f *fakeController) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeController) AppendTask(kind string, params []byte) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == bridge.StateDestroyed {
		return 0, bridge.ErrDestroyed
	}
	if kind == f.reject {
		return 0, nil
	}
	f.nextID++
	f.appended = append(f.appended, kind)
	return f.nextID, nil
}

func (f *fakeController) Append(t tasks.Configurable) (tasks.Submitted, error) {
	return tasks.Append(f, t)
}

func (f *fakeController) Start() error {
	if f.state == bridge.StateDestroyed {
		return bridge.ErrDestroyed
	}
	f.mu.Lock()
	f.running = true
	f.mu.Unlock()
	return nil
}

func (f *fakeController) Stop() error {
	if f.state == bridge.StateDestroyed {
		return bridge.ErrDestroyed
	}
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
	return nil
}

func setupTestServer(t *testing.T) (*Server, *fakeController) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/maa/resource/item_index.json",
		[]byte(`{"30012":{"classifyType":"MATERIAL","name":"Orirock Cube","sortId":1}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	items, err := resource.LoadIndex(fs, "/maa")
	if err != nil {
		t.Fatal(err)
	}

	ctl := &fakeController{state: bridge.StateConnected, items: items}
	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })
	return New(DefaultConfig(), ctl, bus), ctl
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(srv, "GET", "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var status StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if status.State != "connected" || status.UUID != "emulator-5554" || status.Running {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestGetVersion(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(srv, "GET", "/version", "")
	if !strings.Contains(w.Body.String(), `"engine":"v4.10.0-test"`) {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestAppendTask(t *testing.T) {
	srv, ctl := setupTestServer(t)

	w := do(srv, "POST", "/task", `{"type":"Fight","stage":"1-7"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp TaskResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.ID != 1 || resp.Name != tasks.KindFight {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if len(ctl.appended) != 1 || ctl.appended[0] != tasks.KindFight {
		t.Errorf("Unexpected appended tasks: %v", ctl.appended)
	}
}

func TestAppendTask_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reject string
		state  bridge.State
		status int
		code   string
	}{
		{"malformed", `{"type":`, "", bridge.StateConnected, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"unknown type", `{"type":"Infrast"}`, "", bridge.StateConnected, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"rejected", `{"type":"Award"}`, tasks.KindAward, bridge.StateConnected, http.StatusUnprocessableEntity, ErrCodeRejected},
		{"destroyed", `{"type":"Award"}`, "", bridge.StateDestroyed, http.StatusConflict, ErrCodeDestroyed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ctl := setupTestServer(t)
			ctl.reject = tt.reject
			ctl.state = tt.state

			w := do(srv, "POST", "/task", tt.body)
			if w.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestAppendPlan(t *testing.T) {
	srv, ctl := setupTestServer(t)

	w := do(srv, "POST", "/plan", "name: daily\ntasks:\n  - type: StartUp\n  - type: Fight\n  - type: Award\n")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp PlanResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.Name != "daily" || len(resp.Tasks) != 3 || resp.Tasks[2].ID != 3 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if len(ctl.appended) != 3 {
		t.Errorf("Expected 3 appended tasks, got %v", ctl.appended)
	}
}

func TestAppendPlan_StopsAtRejected(t *testing.T) {
	srv, ctl := setupTestServer(t)
	ctl.reject = tasks.KindFight

	w := do(srv, "POST", "/plan", `{"tasks":[{"type":"StartUp"},{"type":"Fight"},{"type":"Award"}]}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.Error.Details["index"] != float64(1) {
		t.Errorf("Expected index 1, got %v", resp.Error.Details["index"])
	}
	if len(ctl.appended) != 1 {
		t.Errorf("Expected only StartUp appended, got %v", ctl.appended)
	}
}

func TestStartStop(t *testing.T) {
	srv, ctl := setupTestServer(t)

	if w := do(srv, "POST", "/start", ""); w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", w.Code)
	}
	if !ctl.Running() {
		t.Error("Expected running after start")
	}
	if w := do(srv, "POST", "/stop", ""); w.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", w.Code)
	}
	if ctl.Running() {
		t.Error("Expected stopped after stop")
	}

	ctl.state = bridge.StateDestroyed
	if w := do(srv, "POST", "/start", ""); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 after destroy, got %d", w.Code)
	}
}

func TestGetItem(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(srv, "GET", "/items/30012", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var item ItemResponse
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if item.ID != "30012" || item.Name != "Orirock Cube" {
		t.Errorf("Unexpected item: %+v", item)
	}

	if w := do(srv, "GET", "/items/99999", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = do(srv, "GET", "/items", "")
	if !strings.Contains(w.Body.String(), `"count":1`) {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/task", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected Access-Control-Allow-Origin header")
	}
}
