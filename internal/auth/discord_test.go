package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/devicelink/internal/models"
	"github.com/go-authgate/devicelink/internal/rpcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

type providerCall struct {
	operation string
	success   bool
}

type recordingMetrics struct {
	mu    sync.Mutex
	calls []providerCall
}

func (r *recordingMetrics) RecordLinkCodeIssued(bool, int) {}
func (r *recordingMetrics) RecordLinkAttempt(string)       {}
func (r *recordingMetrics) RecordTokenRefresh(string)      {}

func (r *recordingMetrics) RecordProviderCall(operation string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, providerCall{operation, success})
}

// fakeDiscord serves the token and current-user endpoints.
type fakeDiscord struct {
	tokenStatus int
	tokenBody   string
	userStatus  int
	userBody    string
	delay       time.Duration

	mu         sync.Mutex
	tokenForms []map[string]string
	basicUser  string
	basicPass  string
	authHeader string
}

func (f *fakeDiscord) forms() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.tokenForms...)
}

func (f *fakeDiscord) headers() (basicUser, basicPass, authorization string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.basicUser, f.basicPass, f.authHeader
}

func (f *fakeDiscord) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}
		_ = r.ParseForm()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		user, pass, _ := r.BasicAuth()

		f.mu.Lock()
		f.tokenForms = append(f.tokenForms, form)
		f.basicUser, f.basicPass = user, pass
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("GET /users/@me", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeader = r.Header.Get("Authorization")
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.userStatus)
		_, _ = w.Write([]byte(f.userBody))
	})
	return mux
}

const okTokenBody = `{"access_token":"tok1","token_type":"Bearer","expires_in":604800,"refresh_token":"ref1","scope":"identify"}`

func newTestProvider(t *testing.T, f *fakeDiscord, timeout time.Duration) (*DiscordProvider, *recordingMetrics) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	rec := &recordingMetrics{}
	p := NewDiscordProvider(DiscordConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		APIURL:       srv.URL + "/",
		Scopes:       []string{"identify"},
		Timeout:      timeout,
	}, srv.Client(), rec, nil)
	return p, rec
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, rpcerr.CodeOf(err), "error: %v", err)
}

func TestDiscordProvider_ExchangeCode_Success(t *testing.T) {
	f := &fakeDiscord{tokenStatus: http.StatusOK, tokenBody: okTokenBody}
	p, rec := newTestProvider(t, f, 5*time.Second)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	tok, err := p.ExchangeCode(context.Background(), "abc", "https://x")
	require.NoError(t, err)

	assert.Equal(t, "tok1", tok.AccessToken)
	assert.Equal(t, "ref1", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, "identify", tok.Scope)
	assert.Equal(t, 604800, tok.ExpiresIn)
	assert.Equal(t, fixed, tok.ObtainedAt)
	assert.False(t, tok.ExpiresAt.IsZero())

	forms := f.forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "authorization_code", forms[0]["grant_type"])
	assert.Equal(t, "abc", forms[0]["code"])
	assert.Equal(t, "https://x", forms[0]["redirect_uri"])
	user, pass, _ := f.headers()
	assert.Equal(t, "client-id", user)
	assert.Equal(t, "client-secret", pass)

	assert.Equal(t, []providerCall{{"exchange_code", true}}, rec.calls)
}

func TestDiscordProvider_ExchangeCode_InvalidGrant(t *testing.T) {
	f := &fakeDiscord{
		tokenStatus: http.StatusBadRequest,
		tokenBody:   `{"error":"invalid_grant","error_description":"Invalid \"code\" in request."}`,
	}
	p, rec := newTestProvider(t, f, 5*time.Second)

	_, err := p.ExchangeCode(context.Background(), "expired", "https://x")
	requireCode(t, err, codes.Unauthenticated)
	assert.ErrorIs(t, err, ErrInvalidGrant)
	assert.Equal(t, []providerCall{{"exchange_code", false}}, rec.calls)
}

func TestDiscordProvider_ExchangeCode_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		message string
	}{
		{
			name:    "other oauth error",
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid_client"}`,
			wantErr: ErrProviderStatus,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: ErrProviderStatus,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{not json`,
			wantErr: ErrDecodeResponse,
			message: "Could not decode provider response",
		},
		{
			name:    "missing access token",
			status:  http.StatusOK,
			body:    `{"token_type":"Bearer"}`,
			wantErr: ErrDecodeResponse,
			message: "Could not decode provider response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeDiscord{tokenStatus: tt.status, tokenBody: tt.body}
			p, _ := newTestProvider(t, f, 5*time.Second)

			_, err := p.ExchangeCode(context.Background(), "abc", "https://x")
			requireCode(t, err, codes.Internal)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.message != "" {
				assert.Equal(t, tt.message, rpcerr.MessageOf(err))
			}
		})
	}
}

func TestDiscordProvider_ExchangeCode_Timeout(t *testing.T) {
	f := &fakeDiscord{tokenStatus: http.StatusOK, tokenBody: okTokenBody, delay: 2 * time.Second}
	p, _ := newTestProvider(t, f, 50*time.Millisecond)

	start := time.Now()
	_, err := p.ExchangeCode(context.Background(), "abc", "https://x")
	requireCode(t, err, codes.Internal)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Less(t, time.Since(start), time.Second)

	// No automatic retry.
	assert.LessOrEqual(t, len(f.forms()), 1)
}

func TestDiscordProvider_RefreshToken(t *testing.T) {
	f := &fakeDiscord{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"tok2","token_type":"Bearer","expires_in":604800,"refresh_token":"ref2","scope":"identify"}`,
	}
	p, rec := newTestProvider(t, f, 5*time.Second)

	tok, err := p.RefreshToken(context.Background(), &models.OAuthToken{
		AccessToken:  "tok1",
		RefreshToken: "ref1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok2", tok.AccessToken)
	assert.Equal(t, "ref2", tok.RefreshToken)

	forms := f.forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "refresh_token", forms[0]["grant_type"])
	assert.Equal(t, "ref1", forms[0]["refresh_token"])
	assert.Equal(t, []providerCall{{"refresh_token", true}}, rec.calls)
}

func TestDiscordProvider_RefreshToken_Errors(t *testing.T) {
	t.Run("missing refresh token", func(t *testing.T) {
		f := &fakeDiscord{tokenStatus: http.StatusOK, tokenBody: okTokenBody}
		p, _ := newTestProvider(t, f, 5*time.Second)

		_, err := p.RefreshToken(context.Background(), &models.OAuthToken{AccessToken: "tok1"})
		requireCode(t, err, codes.Internal)
		assert.ErrorIs(t, err, ErrMissingRefreshToken)
		assert.Empty(t, f.forms())
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		f := &fakeDiscord{tokenStatus: http.StatusBadRequest, tokenBody: `{"error":"invalid_grant"}`}
		p, _ := newTestProvider(t, f, 5*time.Second)

		_, err := p.RefreshToken(context.Background(), &models.OAuthToken{RefreshToken: "ref1"})
		requireCode(t, err, codes.Unauthenticated)
	})
}

func TestDiscordProvider_FetchCurrentUser(t *testing.T) {
	user := models.ProviderIdentity{ID: "9001", Username: "bob", GlobalName: "Bobby"}
	body, err := json.Marshal(user)
	require.NoError(t, err)

	f := &fakeDiscord{userStatus: http.StatusOK, userBody: string(body)}
	p, rec := newTestProvider(t, f, 5*time.Second)

	got, err := p.FetchCurrentUser(context.Background(), &models.OAuthToken{AccessToken: "tok1"})
	require.NoError(t, err)
	assert.Equal(t, &user, got)
	_, _, authorization := f.headers()
	assert.Equal(t, "Bearer tok1", authorization)
	assert.Equal(t, []providerCall{{"fetch_user", true}}, rec.calls)
}

func TestDiscordProvider_FetchCurrentUser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"401: Unauthorized"}`, ErrProviderStatus},
		{"malformed", http.StatusOK, `[`, ErrDecodeResponse},
		{"missing id", http.StatusOK, `{"username":"bob"}`, ErrDecodeResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeDiscord{userStatus: tt.status, userBody: tt.body}
			p, _ := newTestProvider(t, f, 5*time.Second)

			_, err := p.FetchCurrentUser(context.Background(), &models.OAuthToken{AccessToken: "tok1"})
			requireCode(t, err, codes.Internal)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiscordProvider_Defaults(t *testing.T) {
	p := NewDiscordProvider(DiscordConfig{ClientID: "id"}, nil, nil, nil)
	assert.Equal(t, "discord", p.Name())
	assert.Equal(t, DefaultDiscordAPIURL+"/oauth2/token", p.config.Endpoint.TokenURL)
	assert.Contains(t, p.AuthCodeURL("state", "https://x/cb"), "redirect_uri=https%3A%2F%2Fx%2Fcb")
}
