package repository

import (
	"strconv"
	"time"

	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/pkg/oxidb"
)

// toNumericID converts a string ID to float64 for OxiDB queries.
func toNumericID(id string) any {
	if n, err := strconv.ParseFloat(id, 64); err == nil {
		return n
	}
	return id
}

// docToSubmission splits a flat stored document into the typed envelope and
// the letter-specific fields. The status string is decoded here and nowhere
// else.
func docToSubmission(doc map[string]any, id string) models.Submission {
	sub := models.Submission{
		ID:     id,
		Fields: make(map[string]any, len(doc)),
	}
	for k, v := range doc {
		switch k {
		case "_id":
		case models.FieldUserID:
			sub.UserID, _ = v.(string)
		case models.FieldJenisSurat:
			sub.JenisSurat, _ = v.(string)
		case models.FieldStatus:
			raw, _ := v.(string)
			sub.Status = models.ParseStatus(raw)
		case models.FieldTanggalPengajuan:
			sub.TanggalPengajuan = models.ParseTimestamp(v)
		case models.FieldLampiran:
			sub.Lampiran = toStringMap(v)
		default:
			sub.Fields[k] = v
		}
	}
	return sub
}

// submissionToDoc flattens a submission for storage. encodeTime lets each
// backend pick its native date representation.
func submissionToDoc(sub *models.Submission, encodeTime func(time.Time) any) map[string]any {
	doc := make(map[string]any, len(sub.Fields)+5)
	for k, v := range sub.Fields {
		doc[k] = v
	}
	doc[models.FieldUserID] = sub.UserID
	doc[models.FieldJenisSurat] = sub.JenisSurat
	doc[models.FieldStatus] = sub.Status.Legacy()
	if t, ok := sub.TanggalPengajuan.Time(); ok {
		doc[models.FieldTanggalPengajuan] = encodeTime(t)
	}
	if len(sub.Lampiran) > 0 {
		lampiran := make(map[string]any, len(sub.Lampiran))
		for k, v := range sub.Lampiran {
			lampiran[k] = v
		}
		doc[models.FieldLampiran] = lampiran
	}
	return doc
}

func rfc3339(t time.Time) any { return t.UTC().Format(time.RFC3339) }

func toStringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func oxidbID(doc map[string]any) string {
	return oxidb.FormatID(doc["_id"])
}
