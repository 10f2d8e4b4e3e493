package audit

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// SDID constants for RFC5424 structured data IDs. 32473 is the
// enterprise number reserved for documentation and private use.
const (
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// Syslog facilities used by gateway events.
const (
	FacilityAuth     = 4  // LOG_AUTH
	FacilityAuthPriv = 10 // LOG_AUTHPRIV
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

// Event is one auditable occurrence: a record mutation, a comment
// write, or a password change attempt.
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes events as RFC5424 syslog lines.
type Logger struct {
	writer   io.Writer
	hostname string
	appName  string
	pid      int
}

func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  "courseware",
		pid:      os.Getpid(),
	}
}

// SetWriter redirects the logger's output.
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// Log writes one event. Write failures are ignored; audit output must
// never take a request down with it.
func (l *Logger) Log(event Event) {
	_, _ = io.WriteString(l.writer, l.format(event))
}

// format renders <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG.
func (l *Logger) format(event Event) string {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}
	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri, timestamp, hostname, l.appName, l.pid,
		event.MessageID(), sd, event.Message())
}

// formatStructuredData renders [sdid k1="v1" k2="v2"][sdid2 ...].
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var elements []string
	for sdid, params := range sd {
		parts := []string{sdid}
		for key, value := range params {
			parts = append(parts, key+"="+escapeSDValue(value))
		}
		elements = append(elements, "["+strings.Join(parts, " ")+"]")
	}
	return strings.Join(elements, "")
}

// escapeSDValue quotes a param value per RFC5424 section 6.3.3.
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

var (
	// DefaultLogger backs the package-level Log.
	DefaultLogger = NewLogger()

	// DefaultStore persists events when AUDIT_DATABASE_URL is set.
	DefaultStore *Store

	auditEnabled     = true
	auditEnabledOnce sync.Once
	storeInitOnce    sync.Once
)

// IsEnabled reports whether audit output is on. It defaults to on and
// honors COURSEWARE_AUDIT_ENABLED on first call.
func IsEnabled() bool {
	auditEnabledOnce.Do(func() {
		if env := os.Getenv("COURSEWARE_AUDIT_ENABLED"); env != "" {
			auditEnabled = env != "false" && env != "0" && env != "no"
		}
	})
	return auditEnabled
}

// SetEnabled toggles audit output. Call before any Log for consistent
// behavior.
func SetEnabled(enabled bool) {
	auditEnabled = enabled
}

// Log writes the event through the default logger and, when configured,
// the default store. The audit database is optional; connection and
// save failures are reported to stderr and otherwise swallowed.
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	DefaultLogger.Log(event)

	storeInitOnce.Do(func() {
		var err error
		DefaultStore, err = NewStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to connect to audit database: %v\n", err)
		}
	})

	if DefaultStore != nil {
		if err := DefaultStore.Save(event); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save event: %v\n", err)
		}
	}
}
