package handler

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/internal/app/session"
	"property-match-service/internal/domain"
	"property-match-service/internal/transport/httpserver/dto"
	"property-match-service/internal/validator"
)

const matchBody = `{"intent":"buy","country":"India","state":"Maharashtra","city":"Pune"}`

// snapshotBody mirrors the session snapshot JSON.
type snapshotBody[I any] struct {
	Items   []I    `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
	State   string `json:"state"`
}

func newSessionApp(t *testing.T, store *listingStore) *fiber.App {
	t.Helper()

	svc := service.NewMatchService(store, domain.MaxCandidates, 2, zap.NewNop())
	cfg := session.Config{
		Debounce:     20 * time.Millisecond,
		Timeout:      time.Second,
		ErrorMessage: "Failed to load property matches. Please try again.",
	}
	registry, err := session.NewRegistry("properties", 8, time.Minute,
		func() *session.Session[domain.SearchQuery, domain.SearchResultItem] {
			return session.New(svc.Search, cfg, zap.NewNop())
		}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	app := fiber.New()
	NewSessionHandler(registry, DecodeMatchQuery(validator.New()), zap.NewNop()).
		Register(app.Group("/sessions"))
	return app
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp := doRequest(t, app, http.MethodPost, "/sessions/", "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := decodeBody[dto.SessionCreatedResponse](t, resp)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	app := newSessionApp(t, matchStore())
	id := createSession(t, app)
	base := "/sessions/" + id

	resp := doRequest(t, app, http.MethodPost, base+"/search", matchBody)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap := decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 3, snap.Total)
	assert.True(t, snap.HasMore)
	assert.Equal(t, "success", snap.State)

	resp = doRequest(t, app, http.MethodPost, base+"/more", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap = decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, 2, snap.Page)
	assert.False(t, snap.HasMore)

	// Nothing left to load: a no-op that returns the same state
	resp = doRequest(t, app, http.MethodPost, base+"/more", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap = decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
	assert.Len(t, snap.Items, 3)

	resp = doRequest(t, app, http.MethodDelete, base+"/results", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap = decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
	assert.Empty(t, snap.Items)
	assert.Equal(t, "idle", snap.State)

	resp = doRequest(t, app, http.MethodDelete, base, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, base, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, base, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSessionHandler_DebouncedInput(t *testing.T) {
	store := matchStore()
	app := newSessionApp(t, store)
	id := createSession(t, app)

	for _, city := range []string{"Pu", "Pun", "Pune"} {
		body := `{"intent":"buy","country":"India","state":"Maharashtra","city":"` + city + `"}`
		resp := doRequest(t, app, http.MethodPut, "/sessions/"+id+"/input", body)
		require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	}

	require.Eventually(t, func() bool {
		resp := doRequest(t, app, http.MethodGet, "/sessions/"+id, "")
		snap := decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
		return snap.State == "success"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), store.calls.Load(), "only the last keystroke reaches the source")
}

func TestSessionHandler_SupersededSearch(t *testing.T) {
	store := matchStore()
	store.gate = make(chan struct{})
	app := newSessionApp(t, store)
	id := createSession(t, app)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := doRequest(t, app, http.MethodPost, "/sessions/"+id+"/search", matchBody)
			codes[i] = resp.StatusCode
			_ = resp.Body.Close()
		}(i)

		want := int32(i + 1)
		require.Eventually(t, func() bool { return store.calls.Load() == want },
			time.Second, 5*time.Millisecond)
	}

	close(store.gate)
	wg.Wait()

	// The first request was cancelled when the second began.
	assert.Contains(t, []int{fiber.StatusOK, fiber.StatusConflict}, codes[0])
	assert.Equal(t, fiber.StatusOK, codes[1])

	resp := doRequest(t, app, http.MethodGet, "/sessions/"+id, "")
	snap := decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
	assert.Equal(t, "success", snap.State)
	assert.Len(t, snap.Items, 2)
}

func TestSessionHandler_UpstreamError(t *testing.T) {
	store := matchStore()
	store.err = errUpstream
	app := newSessionApp(t, store)
	id := createSession(t, app)

	resp := doRequest(t, app, http.MethodPost, "/sessions/"+id+"/search", matchBody)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	snap := decodeBody[snapshotBody[domain.SearchResultItem]](t, resp)
	assert.Equal(t, "error", snap.State)
	assert.Equal(t, "Failed to load property matches. Please try again.", snap.Error)
	assert.False(t, snap.Loading)
}

func TestSessionHandler_BadRequests(t *testing.T) {
	app := newSessionApp(t, matchStore())
	id := createSession(t, app)

	resp := doRequest(t, app, http.MethodPost, "/sessions/"+id+"/search", `{"intent":"barter"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = doRequest(t, app, http.MethodPut, "/sessions/"+id+"/input", `{"intent":`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = doRequest(t, app, http.MethodPost, "/sessions/missing/search", matchBody)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", decodeBody[dto.ErrorResponse](t, resp).Code)
}

func TestSessionHandler_ProviderSessions(t *testing.T) {
	dir := &providerDirectory{items: []domain.ServiceProvider{
		{ID: "sp-1", Name: "Swift Movers", URL: domain.ServiceProviderURL("sp-1")},
		{ID: "sp-2", Name: "Budget Shifters", URL: domain.ServiceProviderURL("sp-2")},
		{ID: "sp-3", Name: "Careful Packers", URL: domain.ServiceProviderURL("sp-3")},
	}}
	svc := service.NewProviderService(dir, nil, 0, 2, zap.NewNop())
	registry, err := session.NewRegistry("providers", 4, time.Minute,
		func() *session.Session[domain.ServiceQuery, domain.ServiceProvider] {
			return session.New(svc.Search, session.Config{}, zap.NewNop())
		}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	app := fiber.New()
	NewSessionHandler(registry, DecodeProviderQuery(validator.New()), zap.NewNop()).
		Register(app.Group("/sessions"))
	id := createSession(t, app)

	resp := doRequest(t, app, http.MethodPost, "/sessions/"+id+"/search",
		`{"category":"movers","country":"India","state":"Kerala"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap := decodeBody[snapshotBody[domain.ServiceProvider]](t, resp)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "sp-1", snap.Items[0].ID)
	assert.True(t, snap.HasMore)

	resp = doRequest(t, app, http.MethodPost, "/sessions/"+id+"/more", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap = decodeBody[snapshotBody[domain.ServiceProvider]](t, resp)
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, "/services/sp-3", snap.Items[2].URL)
}
