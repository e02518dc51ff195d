package threads

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/domain"
)

// asUser stands in for the JWT middleware.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &auth.CustomClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
			next.ServeHTTP(w, r.WithContext(auth.NewContextWithClaims(r.Context(), claims)))
		})
	}
}

type stubStreamer struct {
	threadID string
	err      error
}

func (s *stubStreamer) Stream(w http.ResponseWriter, _ *http.Request, threadID string) error {
	s.threadID = threadID
	if s.err != nil {
		return s.err
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	return nil
}

func newRouter(svc *ThreadService, streamer Streamer, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser(userID))
	r.Route("/threads", NewThreadHandlers(svc, streamer).RegisterRoutes)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type threadEnvelope struct {
	Message string        `json:"message"`
	Data    domain.Thread `json:"data"`
}

func TestThreadScenario(t *testing.T) {
	f := newFixture(t)
	asAlice := newRouter(f.svc, nil, f.alice.ID)
	asBob := newRouter(f.svc, nil, f.bob.ID)
	body := `{"title":"Intro","starterMessage":"hello","topicId":"` + f.topic.ID + `"}`

	rec := do(asAlice, http.MethodPost, "/threads", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first threadEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "Thread created successfully", first.Message)
	assert.Equal(t, "intro", first.Data.Slug)

	rec = do(asAlice, http.MethodPost, "/threads", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var second threadEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "intro-1", second.Data.Slug)

	rec = do(asBob, http.MethodPatch, "/threads/"+second.Data.ID, `{"title":"Mine now"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(asBob, http.MethodGet, "/threads/by-topic/"+f.topic.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Message string          `json:"message"`
		Data    []domain.Thread `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "Threads found", list.Message)
	assert.Len(t, list.Data, 2)

	rec = do(asBob, http.MethodGet, "/threads/"+first.Data.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.views.seen[first.Data.ID])

	rec = do(asAlice, http.MethodDelete, "/threads/"+first.Data.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Thread deleted successfully: Intro"}`, rec.Body.String())
}

func TestCreateThreadUnknownTopic(t *testing.T) {
	f := newFixture(t)

	rec := do(newRouter(f.svc, nil, f.alice.ID), http.MethodPost, "/threads",
		`{"title":"Intro","starterMessage":"hello","topicId":"`+missingID+`"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Topic not found","error":"Not Found","statusCode":404}`, rec.Body.String())
}

func TestCreateThreadBadCategory(t *testing.T) {
	f := newFixture(t)

	rec := do(newRouter(f.svc, nil, f.alice.ID), http.MethodPost, "/threads",
		`{"title":"Intro","starterMessage":"hello","topicId":"`+f.topic.ID+`","category":"RANT"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreadEvents(t *testing.T) {
	f := newFixture(t)
	thread := f.create(t, "Intro")
	streamer := &stubStreamer{}
	h := newRouter(f.svc, streamer, f.alice.ID)

	rec := do(h, http.MethodGet, "/threads/"+missingID+"/events", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, streamer.threadID)

	rec = do(h, http.MethodGet, "/threads/"+thread.ID+"/events", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, thread.ID, streamer.threadID)
	assert.Empty(t, f.views.seen)

	streamer.err = errors.New("no flusher")
	rec = do(h, http.MethodGet, "/threads/"+thread.ID+"/events", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
