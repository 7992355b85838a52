// Package letters holds the letter-request form schemas and validates
// resident input against them.
package letters

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var schemasYAML []byte

var ErrUnknownLetter = errors.New("jenis surat tidak dikenal")

type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
	TypeNIK      FieldType = "nik"
	TypeTel      FieldType = "tel"
	TypeFile     FieldType = "file"
)

const dateLayout = "2006-01-02"

type Field struct {
	Name     string    `yaml:"name" json:"name"`
	Label    string    `yaml:"label" json:"label"`
	Type     FieldType `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
	Options  []string  `yaml:"options" json:"options,omitempty"`
	Accept   string    `yaml:"accept" json:"accept,omitempty"`
}

type Section struct {
	Title  string  `yaml:"title" json:"title"`
	Fields []Field `yaml:"fields" json:"fields"`
}

type Letter struct {
	Slug     string    `yaml:"slug" json:"slug"`
	Title    string    `yaml:"title" json:"title"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Fields lists every field of the letter in form order.
func (l *Letter) Fields() []Field {
	var out []Field
	for _, s := range l.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

type schemaFile struct {
	Defaults struct {
		Accept string `yaml:"accept"`
	} `yaml:"defaults"`
	Letters []Letter `yaml:"letters"`
}

type Registry struct {
	letters  []Letter
	bySlug   map[string]int
	validate *validator.Validate
}

// Load parses the embedded schemas.
func Load() (*Registry, error) {
	return Parse(schemasYAML)
}

func Parse(data []byte) (*Registry, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse letter schemas: %w", err)
	}
	r := &Registry{bySlug: map[string]int{}, validate: newValidator()}
	for i := range file.Letters {
		l := &file.Letters[i]
		if l.Slug == "" || l.Title == "" {
			return nil, fmt.Errorf("letter %d: slug and title are required", i)
		}
		if _, dup := r.bySlug[l.Slug]; dup {
			return nil, fmt.Errorf("letter %s: duplicate slug", l.Slug)
		}
		seen := map[string]bool{}
		for si := range l.Sections {
			for fi := range l.Sections[si].Fields {
				f := &l.Sections[si].Fields[fi]
				if seen[f.Name] {
					return nil, fmt.Errorf("letter %s: duplicate field %s", l.Slug, f.Name)
				}
				seen[f.Name] = true
				if err := checkField(f); err != nil {
					return nil, fmt.Errorf("letter %s: %w", l.Slug, err)
				}
				if f.Type == TypeFile && f.Accept == "" {
					f.Accept = file.Defaults.Accept
				}
			}
		}
		r.bySlug[l.Slug] = len(r.letters)
		r.letters = append(r.letters, *l)
	}
	return r, nil
}

func checkField(f *Field) error {
	switch f.Type {
	case TypeText, TypeTextarea, TypeNumber, TypeDate, TypeNIK, TypeTel, TypeFile:
	case TypeSelect:
		if len(f.Options) == 0 {
			return fmt.Errorf("field %s: select without options", f.Name)
		}
	default:
		return fmt.Errorf("field %s: unknown type %q", f.Name, f.Type)
	}
	if f.Name == "" {
		return errors.New("field without name")
	}
	return nil
}

func (r *Registry) All() []Letter {
	return r.letters
}

func (r *Registry) Get(slug string) (*Letter, bool) {
	i, ok := r.bySlug[slug]
	if !ok {
		return nil, false
	}
	return &r.letters[i], true
}
