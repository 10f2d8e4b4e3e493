// Package audit provides audit logging for gateway operations.
//
// This package implements structured audit logging for security-relevant
// operations: record mutations (create, update, delete), comment writes,
// and password changes.
//
// # Usage
//
//	audit.Log(audit.MutationEvent{
//		Role:    "admin",
//		Family:  "students",
//		Key:     "s42",
//		Action:  "create",
//		Success: true,
//	})
//
// Events are written to stdout in RFC5424 syslog format, and persisted
// to a database when AUDIT_DATABASE_URL is set. Audit output can be
// disabled with COURSEWARE_AUDIT_ENABLED=false.
package audit
