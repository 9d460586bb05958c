package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/builder"
	"github.com/siege-game/backend/internal/logger"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/session"
	"github.com/siege-game/backend/internal/storage"
	"github.com/siege-game/backend/internal/testutil"
)

const squareLevelJSON = `{"map": [[1, 2], [3, 4]], "1": "wall", "2": "floor", "3": "door", "4": "wall"}`

type testEnv struct {
	store    *testutil.MockStorage
	levels   *testutil.MockLevelSource
	builder  *builder.Builder
	sessions *session.Manager
	handlers *Handlers
	echo     *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.New(io.Discard, "error", "text")

	env := &testEnv{
		store:  testutil.NewMockStorage(),
		levels: testutil.NewMockLevelSource(testutil.SquareLevel(), testutil.KeepLevel(), testutil.LavaLevel()),
	}
	sources := storage.ChainSource{env.levels, env.store.AsSource()}
	env.builder = builder.New(sources, log)
	env.sessions = session.NewManager(env.builder, session.WithLogger(log))
	env.handlers = NewHandlers(&Dependencies{
		Store:        env.store,
		Levels:       sources,
		Validator:    env.builder,
		SessionMgr:   env.sessions,
		DefaultLevel: "keep",
		Limits:       models.DefaultSquadLimits,
		Version:      "test",
	})
	env.echo = echo.New()
	env.echo.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(env.echo, env.handlers)
	return env
}

// serve runs a request through the router, including the error handler.
func (env *testEnv) serve(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func levelFile(name, content string) levelFileRequest {
	return levelFileRequest{
		Name: name,
		Data: base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to unmarshal error response: %v (%s)", err, rec.Body.String())
	}
	return apiErr
}

