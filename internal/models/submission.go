package models

import "fmt"

// SubmissionsCollection is the per-owner sub-collection holding letter requests.
const SubmissionsCollection = "surat_pengajuan"

// Stored field names shared by every letter type.
const (
	FieldUserID           = "userId"
	FieldJenisSurat       = "jenisSurat"
	FieldStatus           = "status"
	FieldTanggalPengajuan = "tanggal_pengajuan"
	FieldLampiran         = "lampiran"
)

// RecordPath addresses one submission: owner, sub-collection, record id.
type RecordPath struct {
	OwnerID    string `json:"ownerId"`
	Collection string `json:"collection"`
	RecordID   string `json:"recordId"`
}

func NewRecordPath(ownerID, recordID string) RecordPath {
	return RecordPath{OwnerID: ownerID, Collection: SubmissionsCollection, RecordID: recordID}
}

func (p RecordPath) String() string {
	return fmt.Sprintf("users/%s/%s/%s", p.OwnerID, p.Collection, p.RecordID)
}

// Submission is one citizen letter request. Fields holds the applicant data
// of its letter type, flat and keyed by form field name.
type Submission struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	JenisSurat       string            `json:"jenisSurat"`
	Status           Status            `json:"status"`
	TanggalPengajuan Timestamp         `json:"tanggalPengajuan"`
	Fields           map[string]any    `json:"fields"`
	Lampiran         map[string]string `json:"lampiran,omitempty"`
}

func (s *Submission) Path() RecordPath {
	return NewRecordPath(s.UserID, s.ID)
}

// Text returns a string field and whether it is present at all. Present but
// non-string values are rendered with fmt.
func (s *Submission) Text(key string) (string, bool) {
	v, ok := s.Fields[key]
	if !ok || v == nil {
		return "", false
	}
	if str, ok := v.(string); ok {
		return str, true
	}
	return fmt.Sprint(v), true
}

// Nama is the applicant name used for searching; empty when absent.
func (s *Submission) Nama() string {
	v, _ := s.Text("nama")
	return v
}
