package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/coursewarehq/courseware/pkg/config"
	"github.com/coursewarehq/courseware/pkg/server"
)

const testTokenKey = "unit-test-token-key"

type testStores struct {
	Entities    *MockEntityStore
	Comments    *MockCommentStore
	Credentials *MockCredentialStore
}

// newTestServer builds a server around mock stores with all endpoints
// registered.
func newTestServer(t *testing.T) (*server.Server, *testStores) {
	t.Helper()

	stores := &testStores{
		Entities:    NewMockEntityStore(),
		Comments:    NewMockCommentStore(),
		Credentials: NewMockCredentialStore(),
	}
	srv := &server.Server{
		Config: &config.CoursewareConfig{
			RequireAuth:           false,
			RequestTimeoutSeconds: 5,
			TokenKey:              testTokenKey,
		},
		Router:      mux.NewRouter().UseEncodedPath(),
		Entities:    stores.Entities,
		Comments:    stores.Comments,
		Credentials: stores.Credentials,
	}
	RegisterAll(srv)
	return srv, stores
}

// adminToken mints a role token accepted by the students family.
func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	signed, err := token.SignedString([]byte(testTokenKey))
	require.NoError(t, err)
	return signed
}

type requestOpts struct {
	body  interface{}
	token string
}

func doRequest(t *testing.T, srv *server.Server, method, target string, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if opts.body != nil {
		encoded, err := json.Marshal(opts.body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	return w
}

// envelope decodes the uniform response body.
func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "response body: %s", w.Body.String())
	require.Contains(t, body, "success")
	return body
}

func requireFailure(t *testing.T, w *httptest.ResponseRecorder, code int) map[string]interface{} {
	t.Helper()
	require.Equal(t, code, w.Code, "response body: %s", w.Body.String())
	body := envelope(t, w)
	require.Equal(t, false, body["success"])
	return body
}

func requireSuccess(t *testing.T, w *httptest.ResponseRecorder, code int) map[string]interface{} {
	t.Helper()
	require.Equal(t, code, w.Code, "response body: %s", w.Body.String())
	body := envelope(t, w)
	require.Equal(t, true, body["success"])
	return body
}
