package services

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/devicelink/internal/auth"
	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/metrics"
	"github.com/go-authgate/devicelink/internal/rpcerr"
	"github.com/go-authgate/devicelink/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

const (
	okTokenBody      = `{"access_token":"tok1","token_type":"Bearer","expires_in":604800,"refresh_token":"ref1","scope":"identify"}`
	refreshTokenBody = `{"access_token":"tok2","token_type":"Bearer","expires_in":604800,"refresh_token":"ref2","scope":"identify"}`
	okUserBody       = `{"id":"9001","username":"bob"}`
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	// Use in-memory SQLite database for testing
	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		LinkTicketTTL:         30 * time.Minute,
		LinkCodeMaxAttempts:   10,
		TokenRefreshThreshold: 24 * time.Hour,
	}
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, rpcerr.CodeOf(err), "error: %v", err)
}

// fakeDiscord serves the token and current-user endpoints and records every
// token grant it receives.
type fakeDiscord struct {
	mu          sync.Mutex
	tokenStatus int
	tokenBody   string
	refreshBody string
	userStatus  int
	userBody    string
	userCalls   int
	grants      []url.Values
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		tokenStatus: http.StatusOK,
		tokenBody:   okTokenBody,
		refreshBody: refreshTokenBody,
		userStatus:  http.StatusOK,
		userBody:    okUserBody,
	}
}

func (f *fakeDiscord) update(fn func(f *fakeDiscord)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeDiscord) grantsOf(grantType string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []url.Values
	for _, g := range f.grants {
		if g.Get("grant_type") == grantType {
			out = append(out, g)
		}
	}
	return out
}

func (f *fakeDiscord) userCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls
}

func (f *fakeDiscord) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		f.mu.Lock()
		f.grants = append(f.grants, r.PostForm)
		status, body := f.tokenStatus, f.tokenBody
		if r.PostForm.Get("grant_type") == "refresh_token" && status == http.StatusOK {
			body = f.refreshBody
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("GET /users/@me", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.userCalls++
		status, body := f.userStatus, f.userBody
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func newTestProvider(t *testing.T, f *fakeDiscord) *auth.DiscordProvider {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	return auth.NewDiscordProvider(auth.DiscordConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		APIURL:       srv.URL,
		Scopes:       []string{"identify"},
		Timeout:      5 * time.Second,
	}, srv.Client(), metrics.NewNoopMetrics(), nil)
}

// sequence returns a generator that yields codes in order and then repeats
// the last one.
func sequence(values ...string) CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := values[min(i, len(values)-1)]
		i++
		return code, nil
	}
}
