package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dukerupert/maidmanager/internal/api"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/session"
)

// fakeGateway is an in-memory stand-in for the attendance gateway. Each
// route counts its calls; fail maps "METHOD /path" to a status to return.
type fakeGateway struct {
	t *testing.T

	mu      sync.Mutex
	maids   map[string]*model.Maid
	order   []string
	calls   map[string]int
	fail    map[string]int
	token   string
	bodies  map[string][]byte
	payroll model.PayrollResponse
	// taskReply selects what task endpoints answer with: "maid", "tasks" or "empty".
	taskReply string
}

func newFakeGateway(t *testing.T) (*fakeGateway, *httptest.Server) {
	t.Helper()
	g := &fakeGateway{
		t:         t,
		maids:     map[string]*model.Maid{},
		calls:     map[string]int{},
		fail:      map[string]int{},
		bodies:    map[string][]byte{},
		token:     "tok-1",
		taskReply: "maid",
		payroll: model.PayrollResponse{
			TotalSalary:   3000,
			PayableAmount: 3000,
		},
	}
	g.put(&model.Maid{ID: "m1", Name: "Asha", Mobile: "9876543210", Address: "12 MG Road",
		Tasks: []model.Task{{ID: "t1", Name: "Cooking", Price: 3000, Frequency: model.FrequencyDaily}}})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", g.handleAuth)
	mux.HandleFunc("POST /api/auth/register", g.handleAuth)
	mux.HandleFunc("GET /api/maids", g.handleList)
	mux.HandleFunc("POST /api/maids", g.handleAddMaid)
	mux.HandleFunc("GET /api/maids/{id}", g.handleGet)
	mux.HandleFunc("PUT /api/maids/{id}", g.handleUpdateMaid)
	mux.HandleFunc("DELETE /api/maids/{id}", g.handleDeleteMaid)
	mux.HandleFunc("GET /api/maids/{id}/payroll", g.handlePayroll)
	mux.HandleFunc("POST /api/maids/{id}/tasks", g.handleAddTask)
	mux.HandleFunc("PUT /api/maids/{id}/tasks/{task}", g.handleUpdateTask)
	mux.HandleFunc("DELETE /api/maids/{id}/tasks/{task}", g.handleDeleteTask)
	mux.HandleFunc("POST /api/maids/request-otp/{id}", g.handleOK)
	mux.HandleFunc("POST /api/maids/verify-otp/{id}", g.handleVerify)
	mux.HandleFunc("POST /api/maids/{id}/attendance/manual", g.handleManual)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		g.mu.Lock()
		g.calls[key]++
		g.bodies[key] = body
		status, failing := g.fail[key]
		g.mu.Unlock()
		if failing {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"msg": "gateway says no"})
			return
		}
		if r.URL.Path != "/api/auth/login" && r.URL.Path != "/api/auth/register" &&
			r.Header.Get("x-auth-token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "No token, authorization denied"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return g, srv
}

func (g *fakeGateway) put(m *model.Maid) {
	if _, ok := g.maids[m.ID]; !ok {
		g.order = append(g.order, m.ID)
	}
	g.maids[m.ID] = m
}

func (g *fakeGateway) count(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[key]
}

func (g *fakeGateway) body(key string) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bodies[key]
}

func (g *fakeGateway) failWith(key string, status int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[key] = status
}

func (g *fakeGateway) recover(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.fail, key)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (g *fakeGateway) handleAuth(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	writeJSON(w, model.AuthResponse{Token: g.token})
}

func (g *fakeGateway) handleList(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []model.Maid{}
	for _, id := range g.order {
		if m, ok := g.maids[id]; ok {
			out = append(out, *m)
		}
	}
	writeJSON(w, out)
}

func (g *fakeGateway) handleAddMaid(w http.ResponseWriter, r *http.Request) {
	var req model.MaidRequest
	json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	defer g.mu.Unlock()
	m := &model.Maid{ID: "m" + string(rune('0'+len(g.order)+1)), Name: req.Name, Mobile: req.Mobile, Address: req.Address}
	g.put(m)
	writeJSON(w, m)
}

func (g *fakeGateway) lookup(w http.ResponseWriter, r *http.Request) *model.Maid {
	m, ok := g.maids[r.PathValue("id")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"msg": "Maid not found"})
		return nil
	}
	return m
}

func (g *fakeGateway) handleGet(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		writeJSON(w, m)
	}
}

func (g *fakeGateway) handleUpdateMaid(w http.ResponseWriter, r *http.Request) {
	var req model.MaidRequest
	json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		m.Name, m.Mobile, m.Address = req.Name, req.Mobile, req.Address
		writeJSON(w, m)
	}
}

func (g *fakeGateway) handleDeleteMaid(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		delete(g.maids, m.ID)
		writeJSON(w, map[string]string{"msg": "Maid removed"})
	}
}

func (g *fakeGateway) handlePayroll(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		writeJSON(w, g.payroll)
	}
}

func (g *fakeGateway) replyTasks(w http.ResponseWriter, m *model.Maid) {
	switch g.taskReply {
	case "tasks":
		writeJSON(w, m.Tasks)
	case "empty":
		w.WriteHeader(http.StatusOK)
	default:
		writeJSON(w, m)
	}
}

func (g *fakeGateway) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskRequest
	json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		m.Tasks = append(m.Tasks, model.Task{ID: "t" + string(rune('0'+len(m.Tasks)+1)), Name: req.Name, Price: req.Price, Frequency: req.Frequency})
		g.replyTasks(w, m)
	}
}

func (g *fakeGateway) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskRequest
	json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		for i := range m.Tasks {
			if m.Tasks[i].ID == r.PathValue("task") {
				m.Tasks[i].Name, m.Tasks[i].Price, m.Tasks[i].Frequency = req.Name, req.Price, req.Frequency
			}
		}
		g.replyTasks(w, m)
	}
}

func (g *fakeGateway) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		kept := m.Tasks[:0]
		for _, task := range m.Tasks {
			if task.ID != r.PathValue("task") {
				kept = append(kept, task)
			}
		}
		m.Tasks = kept
		g.replyTasks(w, m)
	}
}

func (g *fakeGateway) handleOK(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"msg": "OTP sent"})
}

func (g *fakeGateway) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyOTPRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.OTP != "123456" {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"msg": "Invalid or expired OTP"})
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		m.Attendance = append(m.Attendance, model.AttendanceRecord{ID: "a1", TaskName: req.TaskName, Status: model.StatusPresent})
		writeJSON(w, map[string]string{"msg": "Attendance marked"})
	}
}

func (g *fakeGateway) handleManual(w http.ResponseWriter, r *http.Request) {
	var req model.ManualAttendanceRequest
	json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.lookup(w, r); m != nil {
		m.Attendance = append(m.Attendance, model.AttendanceRecord{ID: "a2", TaskName: req.TaskName, Status: req.Status})
		writeJSON(w, m.Attendance)
	}
}

func newTestAPI(t *testing.T, srv *httptest.Server, cred *session.Credential) *api.Client {
	t.Helper()
	return api.NewClient(api.Config{BaseURL: srv.URL + "/"}, cred, slog.Default())
}

// drain returns everything currently buffered on ch.
func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func authed() *session.Credential {
	c := &session.Credential{}
	c.Set("tok-1")
	return c
}
