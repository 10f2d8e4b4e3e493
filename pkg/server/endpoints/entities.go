package endpoints

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/sanitize"
	"github.com/coursewarehq/courseware/pkg/server"
	"github.com/coursewarehq/courseware/pkg/server/middleware"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// RegisterFamilyEndpoints registers the uniform endpoint set for one
// resource family under /{family}.
func RegisterFamilyEndpoints(s *server.Server, d *resource.Descriptor) {
	router := s.Router.PathPrefix("/" + d.Name).Subrouter()

	auth := middleware.NewRoleAuthenticator([]byte(s.Config.TokenKey))
	switch {
	case d.RequireRole != "":
		router.Use(auth.RequireRole(d.RequireRole))
	case s.Config.RequireAuth:
		router.Use(auth.Middleware)
	}

	if d.Comments != nil {
		router.HandleFunc("/comments", handleListComments(s, d)).Methods("GET")
		router.HandleFunc("/comments", handleCreateComment(s, d)).Methods("POST")
		router.HandleFunc("/comments", handleDeleteComment(s, d)).Methods("DELETE")
	}
	if d.Credential != nil {
		router.HandleFunc("/password", handleChangeCredential(s, d)).Methods("POST")
	}

	router.HandleFunc("", handleGetOrList(s, d)).Methods("GET")
	router.HandleFunc("", handleCreate(s, d)).Methods("POST")
	router.HandleFunc("", handleUpdate(s, d)).Methods("PUT")
	router.HandleFunc("", handleDelete(s, d)).Methods("DELETE")
}

// requestContext bounds the request's database round trips.
func requestContext(s *server.Server, r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.RequestTimeout())
}

// label renders the family token as the singular noun used in response
// messages ("students" -> "Student").
func label(d *resource.Descriptor) string {
	return capitalize(strings.TrimSuffix(d.Name, "s"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// normalizeKey validates a caller-supplied key against the family's key
// shape. Database-assigned keys must be positive integers.
func normalizeKey(d *resource.Descriptor, raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", false
	}
	if d.Key.Gen == resource.KeySerial {
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil || n <= 0 {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	}
	return key, true
}

// fieldValue extracts, sanitizes, and validates one field from the
// decoded body. present is false when the field is absent or empty
// after sanitization; errMsg is set when the value is present but
// malformed.
func fieldValue(f resource.Field, body map[string]interface{}) (value interface{}, present bool, errMsg string) {
	if f.Kind == resource.List {
		if _, ok := body[f.Name]; !ok {
			return nil, false, ""
		}
		list, ok := bodyStrings(body, f.Name)
		if !ok {
			return nil, true, fmt.Sprintf("Invalid %s, expected a list of strings", f.Name)
		}
		cleaned := make([]string, 0, len(list))
		for _, item := range list {
			if c := sanitize.Clean(item); c != "" {
				cleaned = append(cleaned, c)
			}
		}
		return cleaned, true, ""
	}

	s := bodyString(body, f.Name)
	if strings.TrimSpace(s) == "" {
		return nil, false, ""
	}

	switch f.Kind {
	case resource.Email:
		s = strings.TrimSpace(s)
		if !sanitize.ValidEmail(s) {
			return nil, true, "Invalid email format"
		}
	case resource.URL:
		s = strings.TrimSpace(s)
		if !sanitize.ValidURL(s) {
			return nil, true, fmt.Sprintf("Invalid %s, expected an absolute http(s) URL", f.Name)
		}
	case resource.Date:
		s = strings.TrimSpace(s)
		if !sanitize.ValidDate(s) {
			return nil, true, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", f.Name)
		}
	case resource.Secret:
		if len(s) < minSecretLength {
			return nil, true, fmt.Sprintf("%s must be at least %d characters", capitalize(f.Name), minSecretLength)
		}
	default:
		s = sanitize.Clean(s)
		if s == "" {
			return nil, false, ""
		}
	}
	return s, true, ""
}

func handleGetOrList(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(s, r)
		defer cancel()

		query := r.URL.Query()
		rawKey := query.Get(d.Key.Column)
		if rawKey == "" {
			records, err := s.Entities.List(ctx, d, store.ListQuery{
				Search: query.Get("search"),
				Sort:   query.Get("sort"),
				Order:  query.Get("order"),
			})
			if err != nil {
				respondWithInternalError(w, err)
				return
			}
			respondWithData(w, http.StatusOK, records)
			return
		}

		key, ok := normalizeKey(d, rawKey)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", d.Key.Column))
			return
		}

		record, err := s.Entities.Get(ctx, d, key)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, record)
	}
}

func handleCreate(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Original clients reach the credential flow through the
		// collection URL with an action parameter.
		if d.Credential != nil && r.URL.Query().Get("action") == "change_password" {
			handleChangeCredential(s, d)(w, r)
			return
		}

		ctx, cancel := requestContext(s, r)
		defer cancel()

		body := decodeBody(r)
		rec := store.Record{}
		uniques := map[string]string{}

		for _, f := range d.Fields {
			value, present, errMsg := fieldValue(f, body)
			if errMsg != "" {
				respondWithError(w, http.StatusBadRequest, errMsg)
				return
			}
			if !present {
				if f.Required {
					respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Missing required field: %s", f.Name))
					return
				}
				continue
			}

			if f.Kind == resource.Secret {
				hash, err := bcrypt.GenerateFromPassword([]byte(value.(string)), bcrypt.DefaultCost)
				if err != nil {
					respondWithInternalError(w, err)
					return
				}
				value = string(hash)
			}
			if f.Unique {
				uniques[f.Name] = value.(string)
			}
			rec[f.Name] = value
		}

		if dup, err := s.Entities.DuplicateField(ctx, d, uniques, ""); err != nil {
			respondWithInternalError(w, err)
			return
		} else if dup != "" {
			auditMutation(r, d, "create", "", false, dup+" already exists")
			respondWithError(w, http.StatusConflict, fmt.Sprintf("%s already exists", dup))
			return
		}

		if d.Key.Gen == resource.KeyUUID {
			rec[d.Key.Column] = uuid.NewString()
		}

		created, err := s.Entities.Create(ctx, d, rec)
		if errors.Is(err, store.ErrConflict) {
			auditMutation(r, d, "create", "", false, "duplicate value for unique field")
			respondWithError(w, http.StatusConflict, "Duplicate value for unique field")
			return
		}
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		auditMutation(r, d, "create", bodyString(created, d.Key.Column), true, "")
		respondWithData(w, http.StatusCreated, created)
	}
}

func handleUpdate(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(s, r)
		defer cancel()

		body := decodeBody(r)
		rawKey := bodyString(body, d.Key.Column)
		if rawKey == "" {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s", d.Key.Column))
			return
		}
		key, ok := normalizeKey(d, rawKey)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", d.Key.Column))
			return
		}

		exists, err := s.Entities.Exists(ctx, d, key)
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		if !exists {
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}

		changes := store.Record{}
		uniques := map[string]string{}
		for _, f := range d.Fields {
			// The key never changes; secrets change only through the
			// credential flow.
			if f.Name == d.Key.Column || f.Kind == resource.Secret {
				continue
			}
			value, present, errMsg := fieldValue(f, body)
			if errMsg != "" {
				respondWithError(w, http.StatusBadRequest, errMsg)
				return
			}
			if !present {
				continue
			}
			if f.Unique {
				uniques[f.Name] = value.(string)
			}
			changes[f.Name] = value
		}

		if len(changes) == 0 {
			respondWithError(w, http.StatusBadRequest, "No fields to update")
			return
		}

		if dup, err := s.Entities.DuplicateField(ctx, d, uniques, key); err != nil {
			respondWithInternalError(w, err)
			return
		} else if dup != "" {
			respondWithError(w, http.StatusConflict, fmt.Sprintf("%s already exists", dup))
			return
		}

		affected, err := s.Entities.Update(ctx, d, key, changes)
		switch {
		case errors.Is(err, store.ErrNoFields):
			respondWithError(w, http.StatusBadRequest, "No fields to update")
			return
		case errors.Is(err, store.ErrConflict):
			respondWithError(w, http.StatusConflict, "Duplicate value for unique field")
			return
		case err != nil:
			respondWithInternalError(w, err)
			return
		}

		// Zero rows means identical values; still a success for the
		// caller, recorded only for operators.
		log.Printf("update %s %s: %d row(s) changed", d.Name, key, affected)
		auditMutation(r, d, "update", key, true, "")
		respondWithMessage(w, http.StatusOK, label(d)+" updated successfully")
	}
}

func handleDelete(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(s, r)
		defer cancel()

		rawKey := r.URL.Query().Get(d.Key.Column)
		if rawKey == "" {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s", d.Key.Column))
			return
		}
		key, ok := normalizeKey(d, rawKey)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", d.Key.Column))
			return
		}

		err := s.Entities.Delete(ctx, d, key)
		if errors.Is(err, store.ErrNotFound) {
			auditMutation(r, d, "delete", key, false, "not found")
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		auditMutation(r, d, "delete", key, true, "")
		respondWithMessage(w, http.StatusOK, label(d)+" deleted successfully")
	}
}
