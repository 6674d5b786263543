package users

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"useradmin/apperrors"
	"useradmin/pkg/breaker"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type AdminTestSuite struct {
	suite.Suite
	ctx      context.Context
	backend  *fakeBackend
	view     *recordingView
	prompts  []string
	confirms bool
	admin    *Admin
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminTestSuite))
}

func (s *AdminTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = newFakeBackend(s.T(), seedUsers()...)
	s.view = &recordingView{}
	s.prompts = nil
	s.confirms = true
	s.admin = NewAdmin(Options{
		BaseURL: s.backend.URL,
		View:    s.view,
		Confirmer: ConfirmFunc(func(prompt string) bool {
			s.prompts = append(s.prompts, prompt)
			return s.confirms
		}),
	})
}

func (s *AdminTestSuite) load() {
	s.Require().NoError(s.admin.FetchUsers(s.ctx))
	s.Require().Equal(3, s.admin.Cache().Len())
}

func (s *AdminTestSuite) TestFetchUsersReplacesCache() {
	s.admin.Cache().Replace([]User{{ID: 99, Username: "stale"}})

	s.NoError(s.admin.FetchUsers(s.ctx))

	s.Equal(seedUsers(), s.admin.Cache().All())
	s.Equal(seedUsers(), s.view.lastUsers())
	note := s.view.lastNote()
	s.Require().NotNil(note)
	s.Equal(KindSuccess, note.Kind)
	s.Equal("Loaded 3 users successfully", note.Message)
	s.False(s.admin.Loading().Active())
}

func (s *AdminTestSuite) TestFetchUsersEmptyList() {
	backend := newFakeBackend(s.T())
	admin := NewAdmin(Options{BaseURL: backend.URL, View: s.view})

	s.NoError(admin.FetchUsers(s.ctx))
	s.Equal(0, admin.Cache().Len())
	s.Equal("Loaded 0 users successfully", s.view.lastNote().Message)
}

func (s *AdminTestSuite) TestFetchUsersFailureKeepsCache() {
	s.load()
	s.backend.fail(http.MethodGet, "/api/users", http.StatusInternalServerError, fiber.Map{"error": "database down"})

	err := s.admin.FetchUsers(s.ctx)
	s.Error(err)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeAPI))
	s.Equal(3, s.admin.Cache().Len())
	s.Equal(KindError, s.view.lastNote().Kind)
	s.Equal("database down", s.view.lastNote().Message)
	s.False(s.admin.Loading().Active())
}

func (s *AdminTestSuite) TestCreateUserRequiresFields() {
	tests := []struct {
		name    string
		req     CreateUserRequest
		missing []string
	}{
		{name: "all empty", req: CreateUserRequest{}, missing: []string{"username", "email", "password"}},
		{name: "no password", req: CreateUserRequest{Username: "dave", Email: "dave@example.com"}, missing: []string{"password"}},
		{name: "whitespace email", req: CreateUserRequest{Username: "dave", Email: "   ", Password: "secret1"}, missing: []string{"email"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			u, err := s.admin.CreateUser(s.ctx, tt.req)
			s.Nil(u)
			s.Require().Error(err)

			appErr := apperrors.FromError(err)
			s.Equal(apperrors.ErrCodeValidationFailed, appErr.Code)
			s.Equal("Username, email, and password are required", appErr.Message)
			s.Equal(tt.missing, appErr.Details["missing"])
			s.Equal(KindError, s.view.lastNote().Kind)
		})
	}

	s.Equal(0, s.backend.total(), "validation failures must not reach the API")
}

func (s *AdminTestSuite) TestCreateUserAppendsServerEntity() {
	s.load()

	u, err := s.admin.CreateUser(s.ctx, CreateUserRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "secret123",
	})
	s.Require().NoError(err)
	s.Equal(int64(101), u.ID)
	s.Equal(RoleUser, u.Role)

	all := s.admin.Cache().All()
	s.Len(all, 4)
	s.Equal(*u, all[3])
	s.Equal(1, s.backend.count(http.MethodPost, "/api/users"))
	s.Equal("User created successfully", s.view.lastNote().Message)

	var sent map[string]any
	s.Require().NoError(json.Unmarshal(s.backend.lastBody(http.MethodPost, "/api/users"), &sent))
	s.Equal("user", sent["role"])
	s.Equal("secret123", sent["password"])
}

func (s *AdminTestSuite) TestCreateUserAPIErrorLeavesCache() {
	s.load()
	s.backend.fail(http.MethodPost, "/api/users", http.StatusConflict, fiber.Map{"success": false, "error": "Username already exists"})

	_, err := s.admin.CreateUser(s.ctx, CreateUserRequest{Username: "alice", Email: "a@example.com", Password: "secret123"})
	s.Error(err)
	s.Equal(3, s.admin.Cache().Len())
	s.Equal("Username already exists", s.view.lastNote().Message)
}

func (s *AdminTestSuite) TestSubmitCreateResetsFormAndOpensList() {
	s.load()

	_, err := s.admin.SubmitCreate(s.ctx, UserForm{
		Username: " dave ",
		Email:    "dave@example.com",
		Password: "secret123",
		Role:     "moderator",
	})
	s.Require().NoError(err)

	s.Equal(1, s.view.resets)
	s.Equal(TabList, s.admin.Navigator().Active())
	// Opening the list refetches
	s.Equal(2, s.backend.count(http.MethodGet, "/api/users"))
	s.Equal(4, s.admin.Cache().Len())
}

func (s *AdminTestSuite) TestSubmitCreateInvalidKeepsForm() {
	_, err := s.admin.SubmitCreate(s.ctx, UserForm{Username: "dave"})
	s.Error(err)
	s.Equal(0, s.view.resets)
	s.Equal(Tab(""), s.admin.Navigator().Active())
}

func (s *AdminTestSuite) TestUpdateUserReplacesOnlyTarget() {
	s.load()
	before := s.admin.Cache().All()

	u, err := s.admin.UpdateUser(s.ctx, 2, UpdateUserRequest{FullName: "Bob Builder"})
	s.Require().NoError(err)
	s.Equal("Bob Builder", u.FullName)

	after := s.admin.Cache().All()
	s.Require().Len(after, 3)
	s.Equal(before[0], after[0])
	s.Equal(*u, after[1])
	s.Equal(before[2], after[2])
	s.Equal("User updated successfully", s.view.lastNote().Message)
}

func (s *AdminTestSuite) TestUpdateSendsOnlyFilledFields() {
	s.load()
	s.Require().NoError(s.admin.SelectForUpdate(3))

	_, err := s.admin.SubmitUpdate(s.ctx, UserForm{Email: "new@example.com", Role: "admin"})
	s.Require().NoError(err)

	var sent map[string]any
	s.Require().NoError(json.Unmarshal(s.backend.lastBody(http.MethodPut, "/api/users/3"), &sent))
	s.Equal(map[string]any{"email": "new@example.com", "role": "admin"}, sent)

	cached, ok := s.admin.Cache().Get(3)
	s.True(ok)
	s.Equal("new@example.com", cached.Email)
	s.Equal("carol", cached.Username)
}

func (s *AdminTestSuite) TestSubmitUpdateWithoutSelection() {
	s.load()

	_, err := s.admin.SubmitUpdate(s.ctx, UserForm{Email: "x@example.com"})
	s.Error(err)
	s.Equal("Please select a user to update", s.view.lastNote().Message)
	s.Equal(0, s.backend.count(http.MethodPut, "/api/users/0"))
}

func (s *AdminTestSuite) TestUpdateUserNotFound() {
	s.load()

	_, err := s.admin.UpdateUser(s.ctx, 42, UpdateUserRequest{Email: "x@example.com"})
	s.Error(err)
	s.Equal("User not found", s.view.lastNote().Message)
	s.Equal(3, s.admin.Cache().Len())
}

func (s *AdminTestSuite) TestDeleteUserRemovesOne() {
	s.load()

	s.Require().NoError(s.admin.DeleteUser(s.ctx, 2))

	s.Equal([]string{`Are you sure you want to delete user "bob"?`}, s.prompts)
	all := s.admin.Cache().All()
	s.Len(all, 2)
	s.Equal([]int64{1, 3}, []int64{all[0].ID, all[1].ID})
	s.Equal("User deleted successfully", s.view.lastNote().Message)
}

func (s *AdminTestSuite) TestDeleteUserDeclined() {
	s.load()
	s.confirms = false

	err := s.admin.DeleteUser(s.ctx, 2)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeCancelled))
	s.Equal(0, s.backend.count(http.MethodDelete, "/api/users/2"))
	s.Equal(3, s.admin.Cache().Len())
}

func (s *AdminTestSuite) TestDeleteClearsSelection() {
	s.load()
	s.Require().NoError(s.admin.SelectForUpdate(2))

	s.Require().NoError(s.admin.DeleteUser(s.ctx, 2))
	s.Equal(int64(0), s.admin.Selected())
}

func (s *AdminTestSuite) TestDeleteUncachedUserPromptsWithID() {
	s.load()

	err := s.admin.DeleteUser(s.ctx, 77)
	s.Error(err)
	s.Equal([]string{`Are you sure you want to delete user "#77"?`}, s.prompts)
}

func (s *AdminTestSuite) TestDefaultConfirmerDeclines() {
	admin := NewAdmin(Options{BaseURL: s.backend.URL})

	err := admin.DeleteUser(s.ctx, 1)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeCancelled))
	s.Equal(0, s.backend.total())
}

func (s *AdminTestSuite) TestListTabFetchesOnce() {
	s.Require().NoError(s.admin.SwitchTab(s.ctx, "list"))
	s.Equal(1, s.backend.count(http.MethodGet, "/api/users"))

	s.Require().NoError(s.admin.SwitchTab(s.ctx, "create"))
	s.Equal(1, s.backend.count(http.MethodGet, "/api/users"))

	s.Require().NoError(s.admin.SwitchTab(s.ctx, "users-list"))
	s.Equal(2, s.backend.count(http.MethodGet, "/api/users"))
	s.Equal([]string{"Users List", "Add User", "Users List"}, s.view.titles)
}

func (s *AdminTestSuite) TestOpenBreakerSuppressesListFetch() {
	s.backend.fail(http.MethodGet, "/api/users", http.StatusServiceUnavailable, fiber.Map{"error": "overloaded"})
	admin := NewAdmin(Options{
		BaseURL: s.backend.URL,
		View:    s.view,
		Breaker: breaker.Config{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Minute},
	})

	for i := 0; i < 2; i++ {
		s.Require().NoError(admin.SwitchTab(s.ctx, "list"))
		s.Equal("overloaded", s.view.lastNote().Message)
	}

	s.Require().NoError(admin.SwitchTab(s.ctx, "list"))
	s.Equal(2, s.backend.count(http.MethodGet, "/api/users"))
	s.Equal(KindError, s.view.lastNote().Kind)
	s.Equal("Service temporarily unavailable", s.view.lastNote().Message)
	s.False(admin.Loading().Active())
}

func (s *AdminTestSuite) TestSwitchTabUnknown() {
	err := s.admin.SwitchTab(s.ctx, "settings")
	s.Error(err)
	s.Equal(Tab(""), s.admin.Navigator().Active())
	s.Equal(KindError, s.view.lastNote().Kind)
}

func (s *AdminTestSuite) TestUpdateTabRendersSelects() {
	s.load()

	s.Require().NoError(s.admin.SwitchTab(s.ctx, "update"))
	s.Require().NotEmpty(s.view.selects)
	opts := s.view.selects[len(s.view.selects)-1]
	s.Require().Len(opts, 3)
	s.Equal(SelectOption{Value: 1, Label: "alice (alice@example.com)"}, opts[0])
}

func (s *AdminTestSuite) TestEditUserPrefillsForm() {
	s.load()

	s.Require().NoError(s.admin.EditUser(s.ctx, 1))
	s.Equal(TabUpdate, s.admin.Navigator().Active())
	s.Equal(int64(1), s.admin.Selected())

	form := s.view.forms[len(s.view.forms)-1]
	s.Equal(UserForm{Username: "alice", Email: "alice@example.com", FullName: "Alice Smith", Role: "admin"}, form)
}

func (s *AdminTestSuite) TestSelectForUpdateUnknown() {
	s.load()

	err := s.admin.SelectForUpdate(55)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeUserNotFound))
	s.Equal(int64(0), s.admin.Selected())
}

func (s *AdminTestSuite) TestShowDetails() {
	s.load()

	s.Require().NoError(s.admin.ShowDetails(s.ctx, 2))
	s.Require().Len(s.view.details, 1)
	d := s.view.details[0]
	s.Require().NotNil(d)
	s.Equal("bob", d.Username)
	s.Equal("Not provided", d.FullName)
	s.Equal(1, s.backend.count(http.MethodGet, "/api/users/2"))
	// Cache is not touched by a single fetch
	s.Equal(3, s.admin.Cache().Len())
}

func (s *AdminTestSuite) TestShowDetailsPlaceholders() {
	s.NoError(s.admin.ShowDetails(s.ctx, 0))
	s.Equal("Please select a user to view details.", s.view.placeholders[0])

	s.Error(s.admin.ShowDetails(s.ctx, 404))
	s.Nil(s.view.details[1])
	s.Equal("Failed to load user details.", s.view.placeholders[1])
}

func (s *AdminTestSuite) TestStart() {
	s.admin.Start(s.ctx)

	s.Equal(s.backend.URL, s.view.docsBase)
	s.Len(s.view.docs, 6)
	s.Equal(TabList, s.admin.Navigator().Active())
	s.Equal(1, s.backend.count(http.MethodGet, "/api/health"))
	s.Equal("Connected to API server", s.view.lastNote().Message)
}

func (s *AdminTestSuite) TestCheckHealthUnreachable() {
	admin := NewAdmin(Options{BaseURL: "http://127.0.0.1:1/api", View: s.view})

	err := admin.CheckHealth(s.ctx)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeNetwork))
	s.Equal("Failed to connect to API server. Make sure the backend is running at http://127.0.0.1:1/api", s.view.lastNote().Message)
	s.False(admin.Loading().Active())
}

func (s *AdminTestSuite) TestLoadingToggles() {
	s.load()

	s.Equal([]bool{true, false}, s.view.loading)
}
