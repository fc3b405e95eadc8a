package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tasktrackr/internal/config"
	"tasktrackr/internal/service"
)

type backendUser struct {
	service.User
	hash []byte
}

// backendTask is the wire shape of the stub, keyed by "_id" like a Mongo backend.
type backendTask struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	DueDate     string    `json:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type userKey struct{}

// FakeBackend is an in-process HTTP server speaking the tasktrackr REST API.
type FakeBackend struct {
	Server *httptest.Server

	calls atomic.Int32

	mu        sync.Mutex
	secret    []byte
	users     map[string]*backendUser // email -> user
	tasks     []*backendTask
	lastBody  map[string]any
	failTasks int
	delay     time.Duration
}

// NewFakeBackend starts a stub backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		secret: []byte(uuid.NewString()),
		users:  make(map[string]*backendUser),
	}

	r := chi.NewRouter()
	r.Use(b.count)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", b.register)
		r.Post("/auth/login", b.login)
		r.Group(func(r chi.Router) {
			r.Use(b.requireToken)
			r.Get("/auth/me", b.me)
			r.Get("/tasks", b.listTasks)
			r.Post("/tasks", b.createTask)
			r.Put("/tasks/{id}", b.updateTask)
			r.Delete("/tasks/{id}", b.deleteTask)
		})
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// Config returns a config pointing at the stub.
func (b *FakeBackend) Config(dir string) *config.Config {
	return &config.Config{Dir: dir, APIBase: b.Server.URL + "/api"}
}

// Calls returns the number of requests received.
func (b *FakeBackend) Calls() int {
	return int(b.calls.Load())
}

// AddUser registers an account and returns a valid token for it.
func (b *FakeBackend) AddUser(name, email, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.addUserLocked(name, email, password)
	token, _ := b.issueLocked(u.ID)
	return token
}

// AddTask stores a task for the user with the given email and returns its id.
func (b *FakeBackend) AddTask(email string, task service.Task) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[email]
	id := uuid.NewString()
	now := time.Now().UTC()
	b.tasks = append(b.tasks, &backendTask{
		ID:          id,
		Owner:       u.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Category:    string(task.Category),
		DueDate:     task.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return id
}

// RevokeTokens rotates the signing key so every issued token is rejected.
func (b *FakeBackend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.secret = []byte(uuid.NewString())
}

// LastBody returns the decoded JSON body of the last create or update.
func (b *FakeBackend) LastBody() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody
}

// FailNextTaskRequests makes the next n task requests answer 500.
func (b *FakeBackend) FailNextTaskRequests(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failTasks = n
}

// SetDelay holds every response for d, like a backend waking from a cold start.
func (b *FakeBackend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

func (b *FakeBackend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		b.mu.Lock()
		delay := b.delay
		b.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) addUserLocked(name, email, password string) *backendUser {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &backendUser{
		User: service.User{ID: uuid.NewString(), Name: name, Email: email},
		hash: hash,
	}
	b.users[email] = u
	return u
}

func (b *FakeBackend) issueLocked(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *FakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		b.mu.Lock()
		secret := b.secret
		b.mu.Unlock()

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[req.Email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	u := b.addUserLocked(req.Name, req.Email, req.Password)
	token, err := b.issueLocked(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": u.User})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := b.issueLocked(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u.User})
}

func (b *FakeBackend) me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userKey{}).(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == userID {
			writeJSON(w, http.StatusOK, map[string]any{"user": u.User})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "user not found")
}

// failing consumes one injected failure. Caller holds b.mu.
func (b *FakeBackend) failing(w http.ResponseWriter) bool {
	if b.failTasks > 0 {
		b.failTasks--
		writeError(w, http.StatusInternalServerError, "database unavailable")
		return true
	}
	return false
}

func (b *FakeBackend) listTasks(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userKey{}).(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing(w) {
		return
	}
	out := []*backendTask{}
	for _, t := range b.tasks {
		if t.Owner == userID {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) createTask(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userKey{}).(string)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastBody = body
	if b.failing(w) {
		return
	}

	title, _ := body["title"].(string)
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	now := time.Now().UTC()
	t := &backendTask{
		ID:        uuid.NewString(),
		Owner:     userID,
		Title:     title,
		Status:    string(service.StatusTodo),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(t, body)
	b.tasks = append(b.tasks, t)
	writeJSON(w, http.StatusCreated, t)
}

func (b *FakeBackend) updateTask(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userKey{}).(string)
	id := chi.URLParam(r, "id")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastBody = body
	if b.failing(w) {
		return
	}
	for _, t := range b.tasks {
		if t.ID == id && t.Owner == userID {
			applyFields(t, body)
			t.UpdatedAt = time.Now().UTC()
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (b *FakeBackend) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userKey{}).(string)
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing(w) {
		return
	}
	for i, t := range b.tasks {
		if t.ID == id && t.Owner == userID {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func applyFields(t *backendTask, body map[string]any) {
	if v, ok := body["title"].(string); ok {
		t.Title = v
	}
	if v, ok := body["description"].(string); ok {
		t.Description = v
	}
	if v, ok := body["status"].(string); ok {
		t.Status = v
	}
	if v, ok := body["category"].(string); ok {
		t.Category = v
	}
	if v, ok := body["dueDate"].(string); ok {
		t.DueDate = v
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
