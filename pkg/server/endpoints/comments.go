package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coursewarehq/courseware/pkg/model"
	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/sanitize"
	"github.com/coursewarehq/courseware/pkg/server"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// parentKey resolves the parent identifier from the query or body.
// "parent" is canonical; each family's legacy parameter name is
// accepted as an alias.
func parentKey(d *resource.Descriptor, query url.Values, body map[string]interface{}) string {
	names := append([]string{"parent"}, d.Comments.Aliases...)
	for _, name := range names {
		if v := query.Get(name); v != "" {
			return v
		}
	}
	for _, name := range names {
		if v := bodyString(body, name); v != "" {
			return v
		}
	}
	return ""
}

func handleListComments(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(s, r)
		defer cancel()

		parent := parentKey(d, r.URL.Query(), nil)
		if parent == "" {
			respondWithError(w, http.StatusBadRequest, "Missing parent identifier")
			return
		}

		comments, err := s.Comments.ListByParent(ctx, d.Name, parent)
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, comments)
	}
}

func handleCreateComment(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(s, r)
		defer cancel()

		body := decodeBody(r)
		rawParent := parentKey(d, r.URL.Query(), body)
		if rawParent == "" {
			respondWithError(w, http.StatusBadRequest, "Missing parent identifier")
			return
		}
		// A parent that does not fit the family's key shape cannot exist;
		// it must never reach the key comparison.
		parent, ok := normalizeKey(d, rawParent)
		if !ok {
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}
		author := sanitize.Clean(bodyString(body, "author"))
		if author == "" {
			respondWithError(w, http.StatusBadRequest, "Missing required field: author")
			return
		}
		text := sanitize.Clean(bodyString(body, "text"))
		if text == "" {
			respondWithError(w, http.StatusBadRequest, "Missing required field: text")
			return
		}

		// The parent check precedes the insert; dependent tables carry
		// no enforced foreign key.
		exists, err := s.Entities.Exists(ctx, d, parent)
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		if !exists {
			respondWithError(w, http.StatusNotFound, label(d)+" not found")
			return
		}

		comment := model.Comment{
			ParentKind: d.Name,
			ParentID:   parent,
			Author:     author,
			Text:       text,
		}
		if err := s.Comments.Create(ctx, &comment); err != nil {
			respondWithInternalError(w, err)
			return
		}
		auditMutation(r, d, "comment-create", parent, true, "")
		respondWithData(w, http.StatusCreated, comment)
	}
}

func handleDeleteComment(s *server.Server, d *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(s, r)
		defer cancel()

		rawID := r.URL.Query().Get("id")
		if rawID == "" {
			respondWithError(w, http.StatusBadRequest, "Missing id")
			return
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid id: %s", rawID))
			return
		}

		err = s.Comments.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Comment not found")
			return
		}
		if err != nil {
			respondWithInternalError(w, err)
			return
		}
		auditMutation(r, d, "comment-delete", rawID, true, "")
		respondWithMessage(w, http.StatusOK, "Comment deleted successfully")
	}
}
