// Package detail renders a single submission for the staff detail page.
package detail

import (
	"fmt"
	"time"

	"github.com/waygalih/suratdesa/internal/models"
)

const (
	DefaultAddress = "way galih"
	NoNotes        = "Tidak ada catatan tambahan."
	InvalidDate    = "Data tanggal tidak valid"
)

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

type Detail struct {
	OwnerID    string            `json:"ownerId"`
	RecordID   string            `json:"recordId"`
	Nama       string            `json:"nama"`
	NIK        string            `json:"nik"`
	Alamat     string            `json:"alamat"`
	Catatan    string            `json:"catatan"`
	JenisSurat string            `json:"jenisSurat"`
	Status     models.Status     `json:"status"`
	Tanggal    string            `json:"tanggal"`
	Fields     map[string]any    `json:"fields"`
	Lampiran   map[string]string `json:"lampiran,omitempty"`
}

// Render builds the read-only detail view. Name and address fall back
// across letter shapes on absence of a field, not on an empty value.
func Render(sub *models.Submission, loc *time.Location) Detail {
	nik, _ := sub.Text("nik")
	d := Detail{
		OwnerID:    sub.UserID,
		RecordID:   sub.ID,
		Nama:       firstPresent(sub, "nama", "nama_pendiri", "nama_anak"),
		NIK:        nik,
		Alamat:     DefaultAddress,
		Catatan:    NoNotes,
		JenisSurat: sub.JenisSurat,
		Status:     sub.Status,
		Tanggal:    FormatDate(sub.TanggalPengajuan, loc),
		Fields:     sub.Fields,
		Lampiran:   sub.Lampiran,
	}
	if a, ok := firstPresentOK(sub, "alamat", "alamat_lembaga", "kecamatan"); ok {
		d.Alamat = a
	}
	if c, _ := sub.Text("catatan"); c != "" {
		d.Catatan = c
	}
	return d
}

func firstPresent(sub *models.Submission, keys ...string) string {
	v, _ := firstPresentOK(sub, keys...)
	return v
}

func firstPresentOK(sub *models.Submission, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := sub.Text(k); ok {
			return v, true
		}
	}
	return "", false
}

// FormatDate renders ts as an Indonesian long date, e.g. "2 Januari 2026".
func FormatDate(ts models.Timestamp, loc *time.Location) string {
	t, ok := ts.Time()
	if !ok {
		return InvalidDate
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}
