package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursewarehq/courseware/pkg/server/store"
)

func storedHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestChangePasswordEndpoint(t *testing.T) {
	body := func(overrides map[string]interface{}) map[string]interface{} {
		b := map[string]interface{}{
			"student_id":       "s1001",
			"current_password": "old-password",
			"new_password":     "new-password",
		}
		for k, v := range overrides {
			b[k] = v
		}
		return b
	}

	t.Run("rewrites the stored hash", func(t *testing.T) {
		srv, stores := newTestServer(t)
		stores.Credentials.On("Hash", "students", "s1001").
			Return(storedHash(t, "old-password"), nil)
		stores.Credentials.On("SetHash", "students", "s1001", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")) == nil
		})).Return(nil)

		w := doRequest(t, srv, "POST", "/students/password", requestOpts{
			body:  body(nil),
			token: adminToken(t),
		})

		resp := requireSuccess(t, w, http.StatusOK)
		assert.Equal(t, "Password updated successfully", resp["message"])
		assert.NotContains(t, w.Body.String(), "new-password")
		stores.Credentials.AssertExpectations(t)
	})

	t.Run("legacy action parameter reaches the same flow", func(t *testing.T) {
		srv, stores := newTestServer(t)
		stores.Credentials.On("Hash", "students", "s1001").
			Return(storedHash(t, "old-password"), nil)
		stores.Credentials.On("SetHash", "students", "s1001", mock.Anything).Return(nil)

		w := doRequest(t, srv, "POST", "/students?action=change_password", requestOpts{
			body:  body(nil),
			token: adminToken(t),
		})

		requireSuccess(t, w, http.StatusOK)
		stores.Credentials.AssertExpectations(t)
	})

	t.Run("short new password is rejected before any lookup", func(t *testing.T) {
		srv, stores := newTestServer(t)

		w := doRequest(t, srv, "POST", "/students/password", requestOpts{
			body:  body(map[string]interface{}{"new_password": "short"}),
			token: adminToken(t),
		})

		resp := requireFailure(t, w, http.StatusBadRequest)
		assert.Equal(t, "New password must be at least 8 characters", resp["message"])
		stores.Credentials.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
	})

	t.Run("wrong current password never mutates the hash", func(t *testing.T) {
		srv, stores := newTestServer(t)
		stores.Credentials.On("Hash", "students", "s1001").
			Return(storedHash(t, "a-different-password"), nil)

		w := doRequest(t, srv, "POST", "/students/password", requestOpts{
			body:  body(nil),
			token: adminToken(t),
		})

		requireFailure(t, w, http.StatusUnauthorized)
		stores.Credentials.AssertNotCalled(t, "SetHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown student", func(t *testing.T) {
		srv, stores := newTestServer(t)
		stores.Credentials.On("Hash", "students", "s404").Return("", store.ErrNotFound)

		w := doRequest(t, srv, "POST", "/students/password", requestOpts{
			body:  body(map[string]interface{}{"student_id": "s404"}),
			token: adminToken(t),
		})

		resp := requireFailure(t, w, http.StatusNotFound)
		assert.Equal(t, "Student not found", resp["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		srv, _ := newTestServer(t)

		for _, field := range []string{"student_id", "current_password", "new_password"} {
			w := doRequest(t, srv, "POST", "/students/password", requestOpts{
				body:  body(map[string]interface{}{field: ""}),
				token: adminToken(t),
			})
			requireFailure(t, w, http.StatusBadRequest)
		}
	})

	t.Run("requires the admin role", func(t *testing.T) {
		srv, stores := newTestServer(t)

		w := doRequest(t, srv, "POST", "/students/password", requestOpts{body: body(nil)})

		requireFailure(t, w, http.StatusUnauthorized)
		stores.Credentials.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
	})
}
