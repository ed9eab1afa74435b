package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"wedding-guest-list/internal/handler"
	"wedding-guest-list/internal/service"
	"wedding-guest-list/internal/service/mocks"
	"wedding-guest-list/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const cookieName = "guestlist_session"

var (
	InvalidJSON = `{"invalid": json}`
)

type testEnv struct {
	router *gin.Engine
	store  *session.MemoryStore
	guests *mocks.GuestServiceMock
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	store := session.NewMemoryStore(time.Hour)
	authService, err := service.NewAuthService(map[string]string{"sarah": string(hash)}, store)
	require.NoError(t, err)

	guests := mocks.NewGuestServiceMock()
	cookie := handler.CookieConfig{Name: cookieName, MaxAge: time.Hour}

	router := handler.NewRouter(
		handler.RouterConfig{ServiceName: "wedding-guest-list-test", Cookie: cookie},
		handler.NewGuestHandler(guests, store, "Wedding Guest List"),
		handler.NewAuthHandler(authService, store, cookie, "Wedding Guest List"),
		store,
	)
	return &testEnv{router: router, store: store, guests: guests}
}

// login opens a session for username directly in the store.
func (e *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	sess, err := e.store.Create(context.Background(), username)
	require.NoError(t, err)
	return &http.Cookie{Name: cookieName, Value: sess.Token}
}

func (e *testEnv) serve(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// flashMessages drains the flashes queued for the session behind cookie.
func (e *testEnv) flashMessages(t *testing.T, cookie *http.Cookie) []string {
	t.Helper()
	flashes, err := e.store.PopFlashes(context.Background(), cookie.Value)
	require.NoError(t, err)
	messages := make([]string, 0, len(flashes))
	for _, f := range flashes {
		messages = append(messages, f.Message)
	}
	return messages
}

// sessionCookie returns the last session cookie the response set.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			found = c
		}
	}
	return found
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func createFormHTTPRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
