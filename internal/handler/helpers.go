package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body kosong")
		}
		return err
	}
	return nil
}

// decodeAndValidate reads the body into v and runs its validate tags,
// writing a 400 or 422 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := readJSON(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "format request tidak valid")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, formatValidationErrors(err))
		return false
	}
	return true
}

func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" wajib diisi")
		case "email":
			msgs = append(msgs, field+" harus email")
		case "min":
			msgs = append(msgs, field+" minimal "+e.Param()+" karakter")
		case "max":
			msgs = append(msgs, field+" maksimal "+e.Param()+" karakter")
		case "oneof":
			msgs = append(msgs, field+" harus salah satu: "+e.Param())
		case "gt":
			msgs = append(msgs, field+" harus lebih besar dari "+e.Param())
		default:
			msgs = append(msgs, field+" tidak valid")
		}
	}
	return strings.Join(msgs, "; ")
}
