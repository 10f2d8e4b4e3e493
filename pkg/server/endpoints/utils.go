package endpoints

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/coursewarehq/courseware/pkg/audit"
	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/server/middleware"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithData(w http.ResponseWriter, code int, data interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"success": true, "data": data})
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{"success": true, "message": message})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{"success": false, "message": message})
}

// respondWithInternalError logs the underlying failure for operators and
// renders a generic message. Driver error text never crosses the
// boundary.
func respondWithInternalError(w http.ResponseWriter, err error) {
	log.Printf("ERROR: %v", err)
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}

// auditRole names the caller for audit trails.
func auditRole(r *http.Request) string {
	if role, ok := middleware.RoleFromContext(r.Context()); ok {
		return role
	}
	return "anonymous"
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// auditMutation records the outcome of a write on a family record.
func auditMutation(r *http.Request, d *resource.Descriptor, action, key string, success bool, errMsg string) {
	audit.Log(audit.MutationEvent{
		Role:         auditRole(r),
		ClientIP:     clientIP(r),
		Family:       d.Name,
		Key:          key,
		Action:       action,
		Success:      success,
		ErrorMessage: errMsg,
	})
}

// decodeBody parses the request body as a JSON object. A body that
// fails to decode is treated as an empty record, not a fatal error;
// handlers then report their own 400 for missing required fields.
func decodeBody(r *http.Request) map[string]interface{} {
	body := map[string]interface{}{}
	if r.Body == nil {
		return body
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return map[string]interface{}{}
	}
	return body
}

// bodyString extracts a map value as a string. JSON numbers are
// rendered without an exponent so integer keys survive the trip;
// int64 covers database-assigned keys read back from the store.
func bodyString(body map[string]interface{}, key string) string {
	switch v := body[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// bodyStrings extracts a body value as a list of strings.
func bodyStrings(body map[string]interface{}, key string) ([]string, bool) {
	switch v := body[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return v, true
	default:
		return nil, false
	}
}
