package audit

import "fmt"

// MutationEvent records a write to a resource family: create, update,
// delete, or a comment operation on a parent record.
type MutationEvent struct {
	Role         string
	ClientIP     string
	Family       string
	Key          string
	Action       string
	Success      bool
	ErrorMessage string
}

func (e MutationEvent) MessageID() string {
	return e.Action
}

func (e MutationEvent) Message() string {
	subject := e.Family
	if e.Key != "" {
		subject = fmt.Sprintf("%s/%s", e.Family, e.Key)
	}
	if e.Success {
		return fmt.Sprintf("%s performed %s on %s", e.Role, e.Action, subject)
	}
	msg := fmt.Sprintf("%s failed to %s %s", e.Role, e.Action, subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e MutationEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e MutationEvent) Facility() int {
	return FacilityAuth
}

func (e MutationEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"role": e.Role,
		},
		SDIDSubject: {
			"family": e.Family,
			"key":    e.Key,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Action,
			"result":    result,
		},
	}
}

// PasswordEvent records a password change attempt. It carries the
// student key only, never any password material.
type PasswordEvent struct {
	Role         string
	ClientIP     string
	StudentKey   string
	Success      bool
	ErrorMessage string
}

func (e PasswordEvent) MessageID() string {
	return "password"
}

func (e PasswordEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("password changed for student %s", e.StudentKey)
	}
	msg := fmt.Sprintf("password change failed for student %s", e.StudentKey)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e PasswordEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e PasswordEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PasswordEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"role": e.Role,
		},
		SDIDSubject: {
			"student": e.StudentKey,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "change-password",
			"result":    result,
		},
	}
}
