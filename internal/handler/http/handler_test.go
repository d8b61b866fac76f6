package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmora/reading-gate/internal/capability"
	"github.com/palmora/reading-gate/internal/config"
	"github.com/palmora/reading-gate/internal/identity"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/ratelimit"
	"github.com/palmora/reading-gate/internal/session"
	"github.com/palmora/reading-gate/internal/store"
	"github.com/palmora/reading-gate/internal/unlock"
	"github.com/palmora/reading-gate/models"
)

// fakeReadings is an in-memory ReadingRepository with the conditional-update
// contract of the SQL implementation.
type fakeReadings struct {
	mu       sync.Mutex
	readings map[string]models.Reading
}

func newFakeReadings(readings ...models.Reading) *fakeReadings {
	f := &fakeReadings{readings: make(map[string]models.Reading)}
	for _, r := range readings {
		f.readings[r.ReadingID] = r
	}
	return f
}

func (f *fakeReadings) GetReading(ctx context.Context, readingID string) (models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.readings[readingID]
	if !ok {
		return models.Reading{}, store.ErrReadingNotFound
	}
	return r, nil
}

func (f *fakeReadings) CreateReading(ctx context.Context, reading models.Reading) (models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[reading.ReadingID] = reading
	return reading, nil
}

func (f *fakeReadings) UpdateUnlockState(ctx context.Context, readingID string, observedCount int, sections models.SectionSet, newCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.readings[readingID]
	if !ok || r.UnlockCount != observedCount || r.Purchased {
		return store.ErrUnlockConflict
	}
	r.UnlockCount = newCount
	r.UnlockedSections = sections
	f.readings[readingID] = r
	return nil
}

func (f *fakeReadings) MarkPurchased(ctx context.Context, readingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.readings[readingID]
	if !ok {
		return store.ErrReadingNotFound
	}
	r.Purchased = true
	f.readings[readingID] = r
	return nil
}

func (f *fakeReadings) AttachOwnerByEmail(ctx context.Context, email, subjectID string) (int64, error) {
	return 0, nil
}

// fakeIdentityClient implements identity.Client with per-test overrides.
type fakeIdentityClient struct {
	validateFn func(ctx context.Context, token string) (map[string]any, error)
	userInfoFn func(ctx context.Context, token string) (map[string]any, error)
}

func (f *fakeIdentityClient) Validate(ctx context.Context, token string) (map[string]any, error) {
	if f.validateFn == nil {
		return nil, fmt.Errorf("%w: no stub", identity.ErrValidationFailed)
	}
	return f.validateFn(ctx, token)
}

func (f *fakeIdentityClient) UserInfo(ctx context.Context, token string) (map[string]any, error) {
	if f.userInfoFn == nil {
		return map[string]any{}, nil
	}
	return f.userInfoFn(ctx, token)
}

type handlerFixture struct {
	handler  *Handler
	readings *fakeReadings
	caps     *capability.Capability
	client   *fakeIdentityClient
	sessions *session.MemoryStore
}

func newFixture(t *testing.T, readings ...models.Reading) *handlerFixture {
	t.Helper()

	repo := newFakeReadings(readings...)
	nop := logger.Nop()

	caps, err := capability.New(config.App{CapabilitySecret: "test-secret"}, nop)
	require.NoError(t, err)

	client := &fakeIdentityClient{}
	sessions := session.NewMemoryStore()
	manager := identity.NewManager(client, sessions, repo, config.Identity{
		BaseURL:     "https://accounts.example.com",
		LandingPath: "/welcome",
	}, "https://palmora.example.com", nop)

	unlocker := unlock.NewService(repo, 2, "https://palmora.example.com/offerings", nop)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), nop)

	h := NewHandler(manager, unlocker, caps, limiter, repo, config.RateLimit{
		ResendLimit:  2,
		ResendWindow: time.Minute,
	}, nop)

	return &handlerFixture{
		handler:  h,
		readings: repo,
		caps:     caps,
		client:   client,
		sessions: sessions,
	}
}

func identityToken(t *testing.T, exp time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{"exp": exp.Unix()})
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(claims) + "."
}

func TestUnlockSection(t *testing.T) {
	t.Run("unlocks a free section", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1"})
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/unlock",
			strings.NewReader(`{"section":"love"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var out unlock.Outcome
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, unlock.StatusUnlocked, out.Status)
		assert.Equal(t, 1, out.UnlocksRemaining)
	})

	t.Run("limit reached carries the offerings redirect", func(t *testing.T) {
		fx := newFixture(t, models.Reading{
			ReadingID:        "r1",
			UnlockCount:      2,
			UnlockedSections: models.SectionSet{models.SectionLove, models.SectionTimeline},
		})
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/unlock",
			strings.NewReader(`{"section":"guidance","return_to":"/reading/r1"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var out unlock.Outcome
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, unlock.StatusLimitReached, out.Status)
		assert.Contains(t, out.RedirectURL, "return_to=")
	})

	t.Run("unknown section is a 400", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1"})
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/unlock",
			strings.NewReader(`{"section":"horoscope"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing reading is a 404", func(t *testing.T) {
		fx := newFixture(t)
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/ghost/unlock",
			strings.NewReader(`{"section":"love"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("foreign owner is a 403", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1", OwnerID: "acc-owner"})
		fx.client.validateFn = func(ctx context.Context, token string) (map[string]any, error) {
			return map[string]any{
				"account_id":    "acc-intruder",
				"email":         "x@example.com",
				"name":          "X",
				"date_of_birth": "1990-01-01",
			}, nil
		}
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/unlock",
			strings.NewReader(`{"section":"love"}`))
		req.AddCookie(&http.Cookie{
			Name:  session.IdentityCookieName,
			Value: identityToken(t, time.Now().Add(time.Hour)),
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad json is a 400", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1"})
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/unlock",
			strings.NewReader("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRedeemCapability(t *testing.T) {
	t.Run("teaser link redirects to the reading", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r9"})
		token, err := fx.caps.Issue("u1", "r9", models.KindTeaserReading, 0)
		require.NoError(t, err)

		router := fx.handler.Init()
		req := httptest.NewRequest(http.MethodGet, "/r/"+token, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reading/r9", rec.Header().Get("Location"))
	})

	t.Run("full link carries the full view hint", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r9", Purchased: true})
		token, err := fx.caps.Issue("u1", "r9", models.KindFullReading, 0)
		require.NoError(t, err)

		router := fx.handler.Init()
		req := httptest.NewRequest(http.MethodGet, "/r/"+token, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reading/r9?view=full", rec.Header().Get("Location"))
	})

	t.Run("tampered token is a 401", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r9"})
		token, err := fx.caps.Issue("u1", "r9", models.KindTeaserReading, 0)
		require.NoError(t, err)

		parts := strings.SplitN(token, ".", 2)
		tampered := parts[0] + "x." + parts[1]

		router := fx.handler.Init()
		req := httptest.NewRequest(http.MethodGet, "/r/"+tampered, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is a 400", func(t *testing.T) {
		fx := newFixture(t)
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodGet, "/r/not-a-token", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid token for a purged reading is a 404", func(t *testing.T) {
		fx := newFixture(t)
		token, err := fx.caps.Issue("u1", "gone", models.KindTeaserReading, 0)
		require.NoError(t, err)

		router := fx.handler.Init()
		req := httptest.NewRequest(http.MethodGet, "/r/"+token, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResendLink(t *testing.T) {
	t.Run("issues a fresh link", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1", Email: "lead@example.com"})
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp resendResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "queued", resp.Status)
		require.True(t, strings.HasPrefix(resp.Link, "/r/"))

		// the returned link must verify as a teaser capability
		payload, err := fx.caps.Verify(strings.TrimPrefix(resp.Link, "/r/"), "",
			[]models.ResourceKind{models.KindTeaserReading})
		require.NoError(t, err)
		assert.Equal(t, "r1", payload.ResourceID)
	})

	t.Run("throttles after the limit", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1", Email: "lead@example.com"})
		router := fx.handler.Init()

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusAccepted, rec.Code)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("zero config falls back to three per ten minutes", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1", Email: "lead@example.com"})
		fx.handler.rateCfg = config.RateLimit{}
		router := fx.handler.Init()

		for i := 0; i < defaultResendLimit; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusAccepted, rec.Code)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.LessOrEqual(t, retryAfter, int(defaultResendWindow.Seconds()))
	})

	t.Run("purchased reading re-issues the full link", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1", OwnerID: "acc-1", Purchased: true})
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp resendResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

		payload, err := fx.caps.Verify(strings.TrimPrefix(resp.Link, "/r/"), "",
			[]models.ResourceKind{models.KindFullReading})
		require.NoError(t, err)
		assert.Equal(t, "acc-1", payload.SubjectID)
	})
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("callback completes login and redirects", func(t *testing.T) {
		fx := newFixture(t, models.Reading{ReadingID: "r1"})
		fx.client.validateFn = func(ctx context.Context, token string) (map[string]any, error) {
			return map[string]any{
				"account_id":    "acc-1",
				"email":         "lead@example.com",
				"name":          "Vera",
				"date_of_birth": "1990-04-12",
			}, nil
		}
		router := fx.handler.Init()

		token := identityToken(t, time.Now().Add(time.Hour))
		req := httptest.NewRequest(http.MethodGet,
			"/auth/callback?token="+token+"&redirect_url=%2Freading%2Fr1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reading/r1", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		names := make(map[string]bool, len(cookies))
		for _, c := range cookies {
			names[c.Name] = true
		}
		assert.True(t, names[session.SessionCookieName])
		assert.True(t, names[session.IdentityCookieName])
	})

	t.Run("callback without token is a 400", func(t *testing.T) {
		fx := newFixture(t)
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("callback with rejected token is a 401", func(t *testing.T) {
		fx := newFixture(t)
		fx.client.validateFn = func(ctx context.Context, token string) (map[string]any, error) {
			return nil, fmt.Errorf("%w: rejected", identity.ErrValidationFailed)
		}
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?token=bad", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login redirects to the identity service", func(t *testing.T) {
		fx := newFixture(t)
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect=%2Freading%2Fr1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		location := rec.Header().Get("Location")
		assert.Contains(t, location, "accounts.example.com/login")
		assert.Contains(t, location, "redirect_url=")
	})

	t.Run("logout clears the identity cookie", func(t *testing.T) {
		fx := newFixture(t)
		router := fx.handler.Init()

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: session.SessionCookieName, Value: "sess-1"})
		req.AddCookie(&http.Cookie{Name: session.IdentityCookieName, Value: "tok"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/welcome", rec.Header().Get("Location"))

		var cleared bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == session.IdentityCookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})
}

func TestTraceIDMiddleware(t *testing.T) {
	fx := newFixture(t, models.Reading{ReadingID: "r1"})
	router := fx.handler.Init()

	t.Run("generates a trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
	})

	t.Run("propagates a supplied trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/readings/r1/resend", nil)
		req.Header.Set(traceIDHeader, "trace-42")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "trace-42", rec.Header().Get(traceIDHeader))
	})
}
