package models

import (
	"encoding/json"
	"strings"
)

// StatusKind is the logical review state of a submission.
type StatusKind int

const (
	StatusPending StatusKind = iota
	StatusCompleted
	StatusRejected
)

func (k StatusKind) String() string {
	switch k {
	case StatusCompleted:
		return "selesai"
	case StatusRejected:
		return "ditolak"
	default:
		return "menunggu"
	}
}

// Legacy encodings of the status field, as stored and as read by older clients.
const (
	completedMarker = "selesai"
	rejectedMarker  = "ditolak"

	LegacyCompleted = "Selesai"
	LegacyRejected  = "Ditolak"
	LegacyPending   = "Menunggu Verifikasi"

	reasonSeparator = " - "
)

// Status is a submission's review state. Only Rejected carries a Reason.
type Status struct {
	Kind   StatusKind
	Reason string
}

func Pending() Status   { return Status{Kind: StatusPending} }
func Completed() Status { return Status{Kind: StatusCompleted} }

func Rejected(reason string) Status {
	return Status{Kind: StatusRejected, Reason: strings.TrimSpace(reason)}
}

// ParseStatus decodes the free-text status field. "selesai" wins over
// "ditolak" when both appear; anything else is pending.
func ParseStatus(raw string) Status {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, completedMarker) {
		return Completed()
	}
	if i := indexFold(raw, rejectedMarker); i >= 0 {
		rest := raw[i+len(rejectedMarker):]
		return Rejected(strings.TrimLeft(rest, " -:"))
	}
	return Pending()
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// Legacy encodes the status the way the store keeps it.
func (s Status) Legacy() string {
	switch s.Kind {
	case StatusCompleted:
		return LegacyCompleted
	case StatusRejected:
		if s.Reason == "" {
			return LegacyRejected
		}
		return LegacyRejected + reasonSeparator + s.Reason
	default:
		return LegacyPending
	}
}

// Label is the human readable status shown to staff.
func (s Status) Label() string { return s.Legacy() }

func (s Status) IsPending() bool { return s.Kind == StatusPending }

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string `json:"kind"`
		Reason string `json:"reason,omitempty"`
		Label  string `json:"label"`
	}{s.Kind.String(), s.Reason, s.Label()})
}
