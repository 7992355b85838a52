package letters

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is a resident's form submission. Files maps each file field to the
// original file name; the bytes are not handled here.
type Input struct {
	Fields map[string]string `json:"fields"`
	Files  map[string]string `json:"files"`
}

// Validated is the cleaned input, ready to be stored.
type Validated struct {
	Fields   map[string]any
	Lampiran map[string]string
}

// ValidationError carries one Indonesian message per offending field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = e.Fields[name]
	}
	return strings.Join(msgs, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ext", func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		for _, allowed := range strings.Fields(fl.Param()) {
			if ext == strings.ToLower(allowed) {
				return true
			}
		}
		return false
	})
	return v
}

// Validate checks in against the letter's fields. Values for names the
// letter does not declare are dropped.
func (r *Registry) Validate(l *Letter, in Input) (*Validated, error) {
	out := &Validated{Fields: map[string]any{}, Lampiran: map[string]string{}}
	problems := map[string]string{}

	for _, f := range l.Fields() {
		var value string
		if f.Type == TypeFile {
			value = strings.TrimSpace(in.Files[f.Name])
			if value != "" {
				value = filepath.Base(value)
			}
		} else {
			value = strings.TrimSpace(in.Fields[f.Name])
		}

		err := r.validate.Var(value, tagFor(f))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			problems[f.Name] = message(f, verrs[0])
			continue
		}
		if err != nil {
			return nil, err
		}
		if value == "" {
			continue
		}
		if f.Type == TypeFile {
			out.Lampiran[f.Name] = value
		} else {
			out.Fields[f.Name] = value
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	return out, nil
}

func tagFor(f Field) string {
	tags := []string{"omitempty"}
	if f.Required {
		tags[0] = "required"
	}
	switch f.Type {
	case TypeText:
		tags = append(tags, "max=200")
	case TypeTextarea:
		tags = append(tags, "max=500")
	case TypeNumber:
		tags = append(tags, "numeric")
	case TypeDate:
		tags = append(tags, "datetime="+dateLayout)
	case TypeNIK:
		tags = append(tags, "number", "len=16")
	case TypeTel:
		tags = append(tags, "number", "startswith=08", "min=11", "max=13")
	case TypeSelect:
		opts := make([]string, len(f.Options))
		for i, o := range f.Options {
			if strings.ContainsAny(o, " \t") {
				o = "'" + o + "'"
			}
			opts[i] = o
		}
		tags = append(tags, "oneof="+strings.Join(opts, " "))
	case TypeFile:
		tags = append(tags, "ext="+strings.Join(acceptList(f.Accept), " "))
	}
	return strings.Join(tags, ",")
}

func acceptList(accept string) []string {
	var out []string
	for _, a := range strings.Split(accept, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func message(f Field, e validator.FieldError) string {
	unit := " karakter"
	if f.Type == TypeNIK || f.Type == TypeTel {
		unit = " digit"
	}
	switch e.Tag() {
	case "required":
		return f.Label + " wajib diisi"
	case "numeric", "number":
		return f.Label + " harus berupa angka"
	case "len":
		return f.Label + " harus " + e.Param() + unit
	case "startswith":
		return f.Label + " harus diawali " + e.Param()
	case "min":
		return f.Label + " minimal " + e.Param() + unit
	case "max":
		return f.Label + " maksimal " + e.Param() + unit
	case "datetime":
		return f.Label + " harus berupa tanggal (YYYY-MM-DD)"
	case "oneof":
		return f.Label + " harus salah satu: " + strings.Join(f.Options, ", ")
	case "ext":
		return f.Label + " harus berkas " + strings.Join(acceptList(f.Accept), ", ")
	default:
		return f.Label + " tidak valid"
	}
}
