package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"useradmin/apperrors"
	"useradmin/pkg/breaker"
	"useradmin/pkg/logger"
)

const (
	msgRequiredFields  = "Username, email, and password are required"
	msgSelectToUpdate  = "Please select a user to update"
	msgSelectToView    = "Please select a user to view details."
	msgDetailsFailed   = "Failed to load user details."
	msgConnected       = "Connected to API server"
	msgConnectFailedFm = "Failed to connect to API server. Make sure the backend is running at %s"
)

var errMissingEntity = errors.New("response carries no user entity")

type Options struct {
	BaseURL             string
	NotificationTimeout time.Duration
	Breaker             breaker.Config
	View                View
	Confirmer           Confirmer
	Logger              *logger.Logger
}

// Admin is the user administration client: CRUD over the REST API, the
// cache mirroring it, and the screens (tabs, forms, notifications) on top.
type Admin struct {
	api      *APIClient
	cache    *Cache
	notifier *Notifier
	loading  *Loading
	nav      *Navigator
	view     View
	confirm  Confirmer
	log      *logger.Logger

	mu       sync.Mutex
	selected int64 // user picked in the update tab, 0 when none
}

func NewAdmin(opts Options) *Admin {
	if opts.View == nil {
		opts.View = NopView{}
	}
	if opts.Confirmer == nil {
		// Without a prompt nothing can be confirmed, so deletes are declined
		opts.Confirmer = ConfirmFunc(func(string) bool { return false })
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}

	a := &Admin{
		cache:   NewCache(),
		view:    opts.View,
		confirm: opts.Confirmer,
		log:     opts.Logger.Component("users"),
	}
	a.notifier = NewNotifier(opts.NotificationTimeout, a.view.ShowNotification)
	a.loading = NewLoading(a.view.SetLoading)
	a.api = NewAPIClient(APIClientConfig{
		BaseURL:  opts.BaseURL,
		Breaker:  opts.Breaker,
		Loading:  a.loading,
		Notifier: a.notifier,
		Logger:   opts.Logger,
	})
	a.nav = NewNavigator(func(t Tab) { a.view.SetTab(t, t.Title()) })

	a.nav.OnEnter(TabList, func(ctx context.Context) {
		// Failures are already logged and notified by the request wrapper
		_ = a.FetchUsers(ctx)
	})
	a.nav.OnEnter(TabUpdate, func(context.Context) { a.renderSelects() })
	a.nav.OnEnter(TabDetails, func(context.Context) { a.renderSelects() })

	return a
}

func (a *Admin) Cache() *Cache         { return a.cache }
func (a *Admin) Notifier() *Notifier   { return a.notifier }
func (a *Admin) Loading() *Loading     { return a.loading }
func (a *Admin) Navigator() *Navigator { return a.nav }
func (a *Admin) BaseURL() string       { return a.api.BaseURL() }

// Start renders the documentation, opens the list tab and probes the API
func (a *Admin) Start(ctx context.Context) {
	a.view.RenderDocs(a.api.BaseURL(), Endpoints())
	_ = a.nav.Switch(ctx, TabList)
	_ = a.CheckHealth(ctx)
}

// SwitchTab activates a tab by name or frontend element id
func (a *Admin) SwitchTab(ctx context.Context, name string) error {
	tab, err := ParseTab(name)
	if err != nil {
		a.notifier.Error(apperrors.FromError(err).Message)
		return err
	}
	return a.nav.Switch(ctx, tab)
}

// FetchUsers replaces the cache with the server's user list
func (a *Admin) FetchUsers(ctx context.Context) error {
	var resp envelope[[]User]
	if err := a.api.Do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		a.log.WithError(err).Warn("failed to fetch users")
		return err
	}

	a.cache.Replace(resp.Data)
	a.renderAll()
	a.notifier.Success(fmt.Sprintf("Loaded %d users successfully", a.cache.Len()))
	return nil
}

// CreateUser validates presence of the required fields, posts the user
// and appends the server's entity to the cache.
func (a *Admin) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validateCreate(req); err != nil {
		a.notifier.Error(err.Message)
		return nil, err
	}
	if req.Role == "" {
		req.Role = RoleUser
	}

	var resp envelope[User]
	if err := a.api.Do(ctx, http.MethodPost, "/users", req, &resp); err != nil {
		a.log.WithError(err).WithField("username", req.Username).Warn("failed to create user")
		return nil, err
	}

	created := resp.Data
	if created.ID == 0 {
		return nil, a.api.fail(apperrors.NewDecodeError("/users", errMissingEntity))
	}
	a.cache.Append(created)
	a.renderAll()
	a.notifier.Success("User created successfully")

	a.log.WithFields(map[string]any{"user_id": created.ID, "username": created.Username}).Info("user created")
	return &created, nil
}

func validateCreate(req CreateUserRequest) *apperrors.AppError {
	var missing []string
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Password) == "" {
		missing = append(missing, "password")
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewValidationError(msgRequiredFields).
		WithOperation("create_user").
		WithDetails("missing", missing)
}

// UpdateUser sends only the non-empty fields of req and swaps the cached
// entry for the server's response.
func (a *Admin) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if id <= 0 {
		err := apperrors.NewBadRequest("Invalid user ID").WithDetails("user_id", id)
		a.notifier.Error(err.Message)
		return nil, err
	}

	var resp envelope[User]
	if err := a.api.Do(ctx, http.MethodPut, userPath(id), req, &resp); err != nil {
		a.log.WithError(err).WithField("user_id", id).Warn("failed to update user")
		return nil, err
	}

	updated := resp.Data
	if updated.ID == 0 {
		return nil, a.api.fail(apperrors.NewDecodeError(userPath(id), errMissingEntity))
	}
	a.cache.ReplaceByID(updated)
	a.renderAll()
	a.notifier.Success("User updated successfully")
	return &updated, nil
}

// DeleteUser asks for confirmation, deletes the user and drops it from the
// cache. A declined prompt sends nothing.
func (a *Admin) DeleteUser(ctx context.Context, id int64) error {
	label := fmt.Sprintf("#%d", id)
	if u, ok := a.cache.Get(id); ok {
		label = u.Username
	}

	if !a.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete user %q?", label)) {
		return apperrors.NewCancelled("delete_user").WithDetails("user_id", id)
	}

	if err := a.api.Do(ctx, http.MethodDelete, userPath(id), nil, nil); err != nil {
		a.log.WithError(err).WithField("user_id", id).Warn("failed to delete user")
		return err
	}

	a.cache.Remove(id)
	a.mu.Lock()
	if a.selected == id {
		a.selected = 0
	}
	a.mu.Unlock()

	a.renderAll()
	a.notifier.Success("User deleted successfully")
	return nil
}

// GetUserByID loads a single user. The cache is left untouched.
func (a *Admin) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var resp envelope[User]
	if err := a.api.Do(ctx, http.MethodGet, userPath(id), nil, &resp); err != nil {
		a.log.WithError(err).WithField("user_id", id).Warn("failed to fetch user")
		return nil, err
	}
	u := resp.Data
	return &u, nil
}

// CheckHealth probes the API once, as the frontend does on load
func (a *Admin) CheckHealth(ctx context.Context) error {
	if err := a.api.Do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		a.notifier.Error(fmt.Sprintf(msgConnectFailedFm, a.api.BaseURL()))
		return err
	}
	a.notifier.Success(msgConnected)
	return nil
}

// Refresh reloads the list
func (a *Admin) Refresh(ctx context.Context) error {
	return a.FetchUsers(ctx)
}

func (a *Admin) renderAll() {
	a.view.RenderUsers(a.cache.All())
	a.renderSelects()
}

func (a *Admin) renderSelects() {
	a.view.RenderSelects(a.SelectOptions())
}

// SelectOptions lists cached users as "username (email)" picker entries
func (a *Admin) SelectOptions() []SelectOption {
	cached := a.cache.All()
	opts := make([]SelectOption, 0, len(cached))
	for _, u := range cached {
		opts = append(opts, SelectOption{
			Value: u.ID,
			Label: fmt.Sprintf("%s (%s)", u.Username, u.Email),
		})
	}
	return opts
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}
