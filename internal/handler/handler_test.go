package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-agenda-api/internal/auth"
	"weekly-agenda-api/internal/handler"
	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/router"
	"weekly-agenda-api/internal/store"
	"weekly-agenda-api/internal/store/memory"
)

const secret = "test-secret"

type env struct {
	t     *testing.T
	srv   http.Handler
	store store.Store
}

func setup(t *testing.T) *env {
	t.Helper()
	return setupWith(t, memory.New())
}

func setupWith(t *testing.T, st store.Store) *env {
	t.Helper()
	h := handler.New(st, secret)
	srv := router.New(router.Options{Handler: h, Logger: zerolog.Nop(), Secret: secret})
	return &env{t: t, srv: srv, store: st}
}

type response struct {
	Code int
	Body []byte
}

func (r response) json(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), string(r.Body))
}

type apiError struct {
	Error    string   `json:"error"`
	Message  string   `json:"message"`
	Messages []string `json:"messages"`
}

func (r response) apiError(t *testing.T) apiError {
	t.Helper()
	var e apiError
	r.json(t, &e)
	return e
}

func (e *env) do(method, path string, body any, token string) response {
	e.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return response{Code: rec.Code, Body: rec.Body.Bytes()}
}

func registration(email string) map[string]any {
	return map[string]any{
		"firstName":       "Test",
		"lastName":        "User",
		"birthDate":       "1990-05-17",
		"city":            "Lisbon",
		"country":         "Portugal",
		"email":           email,
		"password":        "testpass123",
		"confirmPassword": "testpass123",
	}
}

func uniqueEmail() string {
	return fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
}

// registerAndLogin returns the token and the stored user id.
func (e *env) registerAndLogin() (string, string) {
	e.t.Helper()
	email := uniqueEmail()
	res := e.do(http.MethodPost, "/sign-up", registration(email), "")
	require.Equal(e.t, http.StatusCreated, res.Code, string(res.Body))

	res = e.do(http.MethodPost, "/sign-in", map[string]any{"email": email, "password": "testpass123"}, "")
	require.Equal(e.t, http.StatusOK, res.Code, string(res.Body))
	var out struct {
		Token string `json:"token"`
	}
	res.json(e.t, &out)

	u, err := e.store.UserByEmail(context.Background(), email)
	require.NoError(e.t, err)
	return out.Token, u.ID
}

func (e *env) createEvent(token, desc, day string) model.Event {
	e.t.Helper()
	res := e.do(http.MethodPost, "/events", map[string]any{
		"description": desc, "dayOfWeek": day, "userId": "owner-1",
	}, token)
	require.Equal(e.t, http.StatusCreated, res.Code, string(res.Body))
	var out struct {
		Message string      `json:"message"`
		Event   model.Event `json:"event"`
	}
	res.json(e.t, &out)
	require.Equal(e.t, "Event created successfully", out.Message)
	return out.Event
}

// ----- auth tests -----

func TestRegister(t *testing.T) {
	e := setup(t)
	email := uniqueEmail()

	res := e.do(http.MethodPost, "/sign-up", registration(email), "")
	require.Equal(t, http.StatusCreated, res.Code)
	var out map[string]any
	res.json(t, &out)
	assert.Equal(t, map[string]any{"message": "User created successfully"}, out)

	u, err := e.store.UserByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.NotEqual(t, "testpass123", u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "testpass123"))
	assert.Equal(t, "1990-05-17", u.BirthDate.Format("2006-01-02"))
}

func TestRegisterLongPassword(t *testing.T) {
	e := setup(t)
	email := uniqueEmail()
	long := strings.Repeat("a", 80)

	p := registration(email)
	p["password"] = long
	p["confirmPassword"] = long
	res := e.do(http.MethodPost, "/sign-up", p, "")
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))

	res = e.do(http.MethodPost, "/sign-in", map[string]any{"email": email, "password": long}, "")
	assert.Equal(t, http.StatusOK, res.Code, string(res.Body))

	res = e.do(http.MethodPost, "/sign-in", map[string]any{"email": email, "password": strings.Repeat("a", 72)}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Equal(t, "Invalid password!", res.apiError(t).Message)
}

func TestRegisterListsEveryMissingField(t *testing.T) {
	e := setup(t)

	res := e.do(http.MethodPost, "/sign-up", map[string]any{}, "")
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.apiError(t)
	assert.Equal(t, "Validation Error", body.Error)
	assert.Equal(t, []string{
		"The firstName is required!",
		"The lastName is required!",
		"The birthDate is required!",
		"The city is required!",
		"The country is required!",
		"The email is required!",
		"The password is required!",
		"The confirmPassword is required!",
	}, body.Messages)
}

func TestRegisterEmptyBodyIsValidationError(t *testing.T) {
	e := setup(t)
	res := e.do(http.MethodPost, "/sign-up", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Len(t, res.apiError(t).Messages, 8)
}

func TestRegisterValidation(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name   string
		mutate func(p map[string]any)
		want   string
	}{
		{"empty first name", func(p map[string]any) { p["firstName"] = "" }, "The firstName is required!"},
		{"missing city", func(p map[string]any) { delete(p, "city") }, "The city is required!"},
		{"bad email", func(p map[string]any) { p["email"] = "not-an-email" }, "Invalid email format"},
		{"short password", func(p map[string]any) {
			p["password"] = "abc"
			p["confirmPassword"] = "abc"
		}, "The password must be at least 6 characters long"},
		{"mismatch", func(p map[string]any) { p["confirmPassword"] = "different1" }, "Passwords do not match"},
		{"bad date", func(p map[string]any) { p["birthDate"] = "someday" }, `"birthDate" must be a valid date`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := registration(uniqueEmail())
			tt.mutate(p)
			res := e.do(http.MethodPost, "/sign-up", p, "")
			require.Equal(t, http.StatusUnprocessableEntity, res.Code)
			assert.Equal(t, []string{tt.want}, res.apiError(t).Messages)

			if email, ok := p["email"].(string); ok {
				_, err := e.store.UserByEmail(context.Background(), email)
				assert.ErrorIs(t, err, store.ErrNotFound, "nothing persisted")
			}
		})
	}
}

func TestRegisterMalformedJSON(t *testing.T) {
	e := setup(t)
	res := e.do(http.MethodPost, "/sign-up", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Malformed JSON body", res.apiError(t).Message)
}

func TestRegisterDuplicate(t *testing.T) {
	e := setup(t)
	email := uniqueEmail()

	res := e.do(http.MethodPost, "/sign-up", registration(email), "")
	require.Equal(t, http.StatusCreated, res.Code)

	p := registration(email)
	p["firstName"] = "Second"
	res = e.do(http.MethodPost, "/sign-up", p, "")
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.apiError(t)
	assert.Equal(t, "Conflict", body.Error)
	assert.Equal(t, "Email already registered", body.Message)

	u, err := e.store.UserByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "Test", u.FirstName)
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	e := setup(t)
	email := uniqueEmail()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(registration(email))
			req := httptest.NewRequest(http.MethodPost, "/sign-up", bytes.NewReader(raw))
			rec := httptest.NewRecorder()
			e.srv.ServeHTTP(rec, req)
			mu.Lock()
			defer mu.Unlock()
			if rec.Code == http.StatusCreated {
				created++
			} else {
				assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestLogin(t *testing.T) {
	e := setup(t)
	email := uniqueEmail()
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/sign-up", registration(email), "").Code)

	res := e.do(http.MethodPost, "/sign-in", map[string]any{"email": email, "password": "testpass123"}, "")
	require.Equal(t, http.StatusOK, res.Code)

	var out struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	res.json(t, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, map[string]any{"firstName": "Test", "lastName": "User", "email": email}, out.User)

	u, err := e.store.UserByEmail(context.Background(), email)
	require.NoError(t, err)
	claims, err := auth.ParseToken(out.Token, secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLoginFailures(t *testing.T) {
	e := setup(t)
	email := uniqueEmail()
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/sign-up", registration(email), "").Code)

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"unknown user", map[string]any{"email": "nobody@test.com", "password": "testpass123"}, "User not found"},
		{"wrong password", map[string]any{"email": email, "password": "wrongpass"}, "Invalid password!"},
		{"missing password", map[string]any{"email": email}, "The password is required!"},
		{"bad email", map[string]any{"email": "nope", "password": "x"}, "Invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.do(http.MethodPost, "/sign-in", tt.body, "")
			require.Equal(t, http.StatusUnprocessableEntity, res.Code)
			assert.NotContains(t, string(res.Body), "token")
			assert.Equal(t, tt.want, res.apiError(t).Message)
		})
	}
}

func TestGetUser(t *testing.T) {
	e := setup(t)
	_, id := e.registerAndLogin()

	res := e.do(http.MethodGet, "/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, string(res.Body), "password")
	assert.NotContains(t, string(res.Body), "$2a$")

	var out struct {
		User model.PublicUser `json:"user"`
	}
	res.json(t, &out)
	assert.Equal(t, id, out.User.ID)
	assert.Equal(t, "Lisbon", out.User.City)

	res = e.do(http.MethodGet, "/users/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "User not found", res.apiError(t).Message)
}

// ----- event tests -----

func TestCreateEventRequiresToken(t *testing.T) {
	e := setup(t)
	body := map[string]any{"description": "x", "dayOfWeek": "monday", "userId": "u"}

	res := e.do(http.MethodPost, "/events", body, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Access denied!", res.apiError(t).Message)

	res = e.do(http.MethodPost, "/events", body, "garbled.token.value")
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Invalid token!", res.apiError(t).Message)

	forged, err := auth.MakeToken("someone", "not-the-secret")
	require.NoError(t, err)
	res = e.do(http.MethodPost, "/events", body, forged)
	require.Equal(t, http.StatusBadRequest, res.Code)

	all, err := e.store.ListEvents(context.Background(), store.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAndGetEvent(t *testing.T) {
	e := setup(t)
	token, _ := e.registerAndLogin()

	ev := e.createEvent(token, "Gym", "monday")
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "owner-1", ev.UserID)

	res := e.do(http.MethodGet, "/events/"+ev.ID, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var got model.Event
	res.json(t, &got)
	assert.Equal(t, ev, got)
}

func TestCreateEventValidation(t *testing.T) {
	e := setup(t)
	token, _ := e.registerAndLogin()

	tests := []struct {
		name string
		body map[string]any
		want []string
	}{
		{
			name: "funday",
			body: map[string]any{"description": "x", "dayOfWeek": "funday", "userId": "u"},
			want: []string{`"dayOfWeek" must be one of [sunday, monday, tuesday, wednesday, thursday, friday, saturday]`},
		},
		{
			name: "capitalised day",
			body: map[string]any{"description": "x", "dayOfWeek": "Monday", "userId": "u"},
			want: []string{`"dayOfWeek" must be one of [sunday, monday, tuesday, wednesday, thursday, friday, saturday]`},
		},
		{
			name: "everything missing",
			body: map[string]any{},
			want: []string{`"description" is required`, `"dayOfWeek" is required`, `"userId" is required`},
		},
		{
			name: "null byte in description",
			body: map[string]any{"description": "gy\x00m", "dayOfWeek": "monday", "userId": "u"},
			want: []string{`"description" must not contain null characters`},
		},
		{
			name: "unknown field",
			body: map[string]any{"description": "x", "dayOfWeek": "monday", "userId": "u", "owner": "me"},
			want: []string{`"owner" is not allowed`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.do(http.MethodPost, "/events", tt.body, token)
			require.Equal(t, http.StatusUnprocessableEntity, res.Code)
			body := res.apiError(t)
			assert.Equal(t, "Validation Error", body.Error)
			assert.Equal(t, tt.want, body.Messages)
			assert.Equal(t, strings.Join(tt.want, ", "), body.Message)
		})
	}

	all, err := e.store.ListEvents(context.Background(), store.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListEvents(t *testing.T) {
	e := setup(t)
	token, _ := e.registerAndLogin()

	res := e.do(http.MethodGet, "/events", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `[]`, string(res.Body))

	gym := e.createEvent(token, "Gym session", "monday")
	read := e.createEvent(token, "Read", "monday")
	swim := e.createEvent(token, "Swim at the GYM", "friday")

	list := func(q url.Values) []string {
		t.Helper()
		res := e.do(http.MethodGet, "/events?"+q.Encode(), nil, "")
		require.Equal(t, http.StatusOK, res.Code, string(res.Body))
		var events []model.Event
		res.json(t, &events)
		ids := make([]string, len(events))
		for i, ev := range events {
			ids[i] = ev.ID
		}
		return ids
	}

	assert.Equal(t, []string{gym.ID, read.ID, swim.ID}, list(url.Values{}))
	assert.Equal(t, []string{gym.ID, read.ID}, list(url.Values{"dayOfWeek": {"monday"}}))
	assert.Equal(t, []string{gym.ID, swim.ID}, list(url.Values{"description": {"gym"}}))
	assert.Equal(t, []string{swim.ID}, list(url.Values{"description": {"gym"}, "dayOfWeek": {"friday"}}))
	assert.Empty(t, list(url.Values{"dayOfWeek": {"sunday"}}))
}

func TestListEventsRejectsBadFilters(t *testing.T) {
	e := setup(t)

	for _, q := range []string{
		"dayOfWeek=funday",
		"dayOfWeek=Monday",
		"dayOfWeek=",
		"color=red",
		"dayOfWeek=monday&dayOfWeek=funday",
		"description=gym&description=swim",
		"description=g%00ym",
	} {
		res := e.do(http.MethodGet, "/events?"+q, nil, "")
		assert.Equal(t, http.StatusUnprocessableEntity, res.Code, q)
	}

	res := e.do(http.MethodGet, "/events?dayOfWeek=monday&dayOfWeek=friday", nil, "")
	assert.Equal(t, []string{`"dayOfWeek" must be a string`}, res.apiError(t).Messages)
}

func TestGetEventNotFound(t *testing.T) {
	e := setup(t)
	for _, id := range []string{uuid.NewString(), "not-an-id"} {
		res := e.do(http.MethodGet, "/events/"+id, nil, "")
		require.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "Event not found", res.apiError(t).Message)
	}
}

func TestDeleteEvent(t *testing.T) {
	e := setup(t)
	token, _ := e.registerAndLogin()
	ev := e.createEvent(token, "Gym", "monday")

	res := e.do(http.MethodDelete, "/events/"+ev.ID, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var out map[string]any
	res.json(t, &out)
	assert.Equal(t, "Event deleted successfully", out["message"])

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/events/"+ev.ID, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/events/"+ev.ID, nil, "").Code)
}

func TestDeleteEventsByDay(t *testing.T) {
	e := setup(t)
	token, _ := e.registerAndLogin()

	res := e.do(http.MethodDelete, "/events/by-day?dayOfWeek=tuesday", nil, "")
	require.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "No events found for the specified day", res.apiError(t).Message)

	a := e.createEvent(token, "a", "tuesday")
	b := e.createEvent(token, "b", "tuesday")
	keep := e.createEvent(token, "c", "wednesday")

	res = e.do(http.MethodDelete, "/events/by-day?dayOfWeek=tuesday", nil, "")
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var out struct {
		Message       string        `json:"message"`
		DeletedCount  int           `json:"deletedCount"`
		DeletedEvents []model.Event `json:"deletedEvents"`
	}
	res.json(t, &out)
	assert.Equal(t, "Events deleted successfully", out.Message)
	assert.Equal(t, 2, out.DeletedCount)
	assert.Equal(t, []model.Event{a, b}, out.DeletedEvents)

	left, err := e.store.ListEvents(context.Background(), store.EventFilter{DayOfWeek: "tuesday"})
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = e.store.GetEvent(context.Background(), keep.ID)
	assert.NoError(t, err)
}

func TestDeleteEventsByDayRejectsBadDay(t *testing.T) {
	e := setup(t)
	token, _ := e.registerAndLogin()
	e.createEvent(token, "a", "monday")

	for _, q := range []string{"", "?dayOfWeek=funday", "?dayOfWeek=MONDAY"} {
		res := e.do(http.MethodDelete, "/events/by-day"+q, nil, "")
		require.Equal(t, http.StatusBadRequest, res.Code, q)
		assert.Equal(t, "Invalid day of week", res.apiError(t).Message)
	}

	all, err := e.store.ListEvents(context.Background(), store.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// ----- infrastructure -----

type failingStore struct {
	store.Store
}

var errDown = errors.New("dial tcp 10.1.2.3:27017: connection refused")

func (failingStore) ListEvents(context.Context, store.EventFilter) ([]model.Event, error) {
	return nil, errDown
}

func (failingStore) Ping(context.Context) error { return errDown }

func TestStoreFailureIs500WithoutDetail(t *testing.T) {
	e := setupWith(t, failingStore{Store: memory.New()})

	res := e.do(http.MethodGet, "/events", nil, "")
	require.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, string(res.Body), "10.1.2.3")
	assert.Equal(t, "Internal server error", res.apiError(t).Message)

	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/readyz", nil, "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := setup(t)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", nil, "").Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/readyz", nil, "").Code)

	res := e.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), "agenda_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	e := setup(t)
	res := e.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}
