package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/coursewarehq/courseware/pkg/audit"
	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/server"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// minSecretLength is the minimum accepted password length, enforced
// before any store access.
const minSecretLength = 8

// handleChangeCredential verifies the current password and overwrites
// the stored hash. Plaintext values are never logged or echoed back.
func handleChangeCredential(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)

		key := strings.TrimSpace(bodyString(body, d.Key.Column))
		if key == "" {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s", d.Key.Column))
			return
		}
		current := bodyString(body, "current_password")
		if current == "" {
			respondWithError(w, http.StatusBadRequest, "Missing required field: current_password")
			return
		}
		newPassword := bodyString(body, "new_password")
		if newPassword == "" {
			respondWithError(w, http.StatusBadRequest, "Missing required field: new_password")
			return
		}
		if len(newPassword) < minSecretLength {
			respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("New password must be at least %d characters", minSecretLength))
			return
		}

		ctx, cancel := requestContext(s, r)
		defer cancel()

		hash, err := s.Credentials.Hash(ctx, d, key)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}
		if err != nil {
			respondWithInternalError(w, err)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
			auditPassword(r, key, false, "current password is incorrect")
			respondWithError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			respondWithInternalError(w, err)
			return
		}

		err = s.Credentials.SetHash(ctx, d, key, string(newHash))
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		auditPassword(r, key, true, "")
		respondWithMessage(w, http.StatusOK, "Password updated successfully")
	}
}

// auditPassword records the attempt with the student key only, never
// any password material.
func auditPassword(r *http.Request, key string, success bool, errMsg string) {
	audit.Log(audit.PasswordEvent{
		Role:         auditRole(r),
		ClientIP:     clientIP(r),
		StudentKey:   key,
		Success:      success,
		ErrorMessage: errMsg,
	})
}
