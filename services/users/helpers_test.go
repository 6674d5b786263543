package users

import (
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type failure struct {
	status int
	body   fiber.Map
}

// fakeBackend is an in-memory user API counting every request it serves
type fakeBackend struct {
	mu       sync.Mutex
	users    []User
	nextID   int64
	requests map[string]int
	bodies   map[string][]byte
	failures map[string]failure

	app *fiber.App
	URL string
}

func newFakeBackend(t *testing.T, seed ...User) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		users:    append([]User(nil), seed...),
		nextID:   100,
		requests: make(map[string]int),
		bodies:   make(map[string][]byte),
		failures: make(map[string]failure),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	api := app.Group("/api")
	api.Use(b.record)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})
	api.Get("/users", b.list)
	api.Post("/users", b.create)
	api.Get("/users/:id", b.get)
	api.Put("/users/:id", b.update)
	api.Delete("/users/:id", b.delete)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	b.app = app
	b.URL = "http://" + ln.Addr().String() + "/api"
	return b
}

func reqKey(method, path string) string { return method + " " + path }

func (b *fakeBackend) record(c *fiber.Ctx) error {
	k := reqKey(c.Method(), c.Path())

	b.mu.Lock()
	b.requests[k]++
	b.bodies[k] = append([]byte(nil), c.Body()...)
	f, failing := b.failures[k]
	b.mu.Unlock()

	if failing {
		return c.Status(f.status).JSON(f.body)
	}
	return c.Next()
}

// fail makes every request to method+path answer with status and body
func (b *fakeBackend) fail(method, path string, status int, body fiber.Map) {
	b.mu.Lock()
	b.failures[reqKey(method, path)] = failure{status: status, body: body}
	b.mu.Unlock()
}

func (b *fakeBackend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[reqKey(method, path)]
}

func (b *fakeBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.requests {
		n += c
	}
	return n
}

func (b *fakeBackend) lastBody(method, path string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[reqKey(method, path)]
}

func (b *fakeBackend) list(c *fiber.Ctx) error {
	b.mu.Lock()
	out := make([]User, len(b.users))
	copy(out, b.users)
	b.mu.Unlock()
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (b *fakeBackend) find(c *fiber.Ctx) (int, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return -1, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid user ID"})
	}
	for i, u := range b.users {
		if u.ID == id {
			return i, nil
		}
	}
	return -1, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "User not found"})
}

func (b *fakeBackend) get(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.find(c)
	if i < 0 {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": b.users[i]})
}

func (b *fakeBackend) create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}

	b.mu.Lock()
	b.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	u := User{
		ID:        b.nextID,
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      req.Role,
		Password:  "$2a$10$hashedpasswordvalue",
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.users = append(b.users, u)
	b.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": u})
}

func (b *fakeBackend) update(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.find(c)
	if i < 0 {
		return err
	}

	u := &b.users[i]
	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.FullName != "" {
		u.FullName = req.FullName
	}
	if req.Role != "" {
		u.Role = req.Role
	}
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return c.JSON(fiber.Map{"success": true, "data": *u})
}

func (b *fakeBackend) delete(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.find(c)
	if i < 0 {
		return err
	}
	b.users = append(b.users[:i], b.users[i+1:]...)
	return c.JSON(fiber.Map{"success": true, "message": "User deleted"})
}

// recordingView keeps every render call for assertions
type recordingView struct {
	mu           sync.Mutex
	tabs         []Tab
	titles       []string
	users        [][]User
	selects      [][]SelectOption
	forms        []UserForm
	formSelected []int64
	resets       int
	details      []*UserDetails
	placeholders []string
	docsBase     string
	docs         []Endpoint
	notes        []*Notification
	loading      []bool
}

func (v *recordingView) SetTab(tab Tab, title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tabs = append(v.tabs, tab)
	v.titles = append(v.titles, title)
}

func (v *recordingView) RenderUsers(users []User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.users = append(v.users, users)
}

func (v *recordingView) RenderSelects(options []SelectOption) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selects = append(v.selects, options)
}

func (v *recordingView) RenderUpdateForm(selected int64, form UserForm) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formSelected = append(v.formSelected, selected)
	v.forms = append(v.forms, form)
}

func (v *recordingView) ResetCreateForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets++
}

func (v *recordingView) RenderDetails(details *UserDetails, placeholder string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.details = append(v.details, details)
	v.placeholders = append(v.placeholders, placeholder)
}

func (v *recordingView) RenderDocs(baseURL string, endpoints []Endpoint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.docsBase = baseURL
	v.docs = endpoints
}

func (v *recordingView) ShowNotification(n *Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notes = append(v.notes, n)
}

func (v *recordingView) SetLoading(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = append(v.loading, active)
}

func (v *recordingView) lastNote() *Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.notes) == 0 {
		return nil
	}
	return v.notes[len(v.notes)-1]
}

func (v *recordingView) lastUsers() []User {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.users) == 0 {
		return nil
	}
	return v.users[len(v.users)-1]
}

func seedUsers() []User {
	created := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	return []User{
		{ID: 1, Username: "alice", Email: "alice@example.com", FullName: "Alice Smith", Role: RoleAdmin, CreatedAt: created, UpdatedAt: created},
		{ID: 2, Username: "bob", Email: "bob@example.com", Role: RoleUser, CreatedAt: created, UpdatedAt: created},
		{ID: 3, Username: "carol", Email: "carol@example.com", FullName: "Carol Jones", Role: RoleModerator, CreatedAt: created, UpdatedAt: created},
	}
}
