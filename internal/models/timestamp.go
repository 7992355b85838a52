package models

import (
	"encoding/json"
	"time"
)

// Timestamp is a submission date as found in the store. Records written by
// different clients carry RFC3339 strings, Firestore-style
// {seconds,nanoseconds} objects or native dates; anything else is kept as an
// invalid timestamp instead of failing the whole record.
type Timestamp struct {
	t     time.Time
	valid bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t, valid: !t.IsZero()}
}

// Time returns the instant and whether the stored value could be converted.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.valid
}

// ParseTimestamp converts a decoded document value.
func ParseTimestamp(v any) Timestamp {
	switch x := v.(type) {
	case time.Time:
		return NewTimestamp(x)
	case *time.Time:
		if x == nil {
			return Timestamp{}
		}
		return NewTimestamp(*x)
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return NewTimestamp(t)
			}
		}
	case map[string]any:
		secs, ok := number(x["seconds"])
		if !ok {
			secs, ok = number(x["_seconds"])
		}
		if !ok {
			return Timestamp{}
		}
		nanos, _ := number(x["nanoseconds"])
		if nanos == 0 {
			nanos, _ = number(x["_nanoseconds"])
		}
		return NewTimestamp(time.Unix(int64(secs), int64(nanos)).UTC())
	}
	return Timestamp{}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.UTC().Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*ts = ParseTimestamp(v)
	return nil
}
