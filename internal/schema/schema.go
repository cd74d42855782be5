// Package schema loads the static CMS description: which collections exist,
// where their files live in the repository, which fields they carry and which
// of those are localized. The schema is read once at startup from a YAML file
// and is immutable afterwards.
package schema

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"go-git-cms/internal/model"
)

// Collection types.
const (
	TypeCollection = "collection"
	TypeSingleton  = "singleton"
)

type Field struct {
	Name      string `mapstructure:"name" validate:"required"`
	Label     string `mapstructure:"label"`
	Type      string `mapstructure:"type" validate:"required"`
	Required  bool   `mapstructure:"required"`
	Localized bool   `mapstructure:"localized"`
}

type Collection struct {
	Slug       string  `mapstructure:"slug" validate:"required"`
	Label      string  `mapstructure:"label" validate:"required"`
	Path       string  `mapstructure:"path" validate:"required"`
	Type       string  `mapstructure:"type" validate:"omitempty,oneof=collection singleton"`
	TitleField string  `mapstructure:"title_field"`
	Fields     []Field `mapstructure:"fields" validate:"required,min=1,dive"`
}

type I18N struct {
	Locales       []string `mapstructure:"locales"`
	DefaultLocale string   `mapstructure:"default_locale"`
}

type Schema struct {
	MediaRoot    string       `mapstructure:"media_root"`
	PublicPrefix string       `mapstructure:"public_prefix"`
	FilesRoot    string       `mapstructure:"files_root"`
	TrashRoot    string       `mapstructure:"trash_root"`
	I18N         I18N         `mapstructure:"i18n"`
	Collections  []Collection `mapstructure:"collections" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Load reads and validates the schema file.
func Load(path string) (*Schema, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("media_root", "public/uploads")
	v.SetDefault("public_prefix", "public")
	v.SetDefault("files_root", "content/files")
	v.SetDefault("trash_root", "content/trash")
	v.SetDefault("i18n.locales", []string{"en"})
	v.SetDefault("i18n.default_locale", "en")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	var s Schema
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	return &s, nil
}

// Validate runs struct-tag validation plus the rules tags cannot express.
func (s *Schema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}

	slugs := make(map[string]struct{}, len(s.Collections))
	for i, c := range s.Collections {
		if _, dup := slugs[c.Slug]; dup {
			return fmt.Errorf("collections[%d]: duplicate slug %q", i, c.Slug)
		}
		slugs[c.Slug] = struct{}{}

		if strings.HasPrefix(c.Path, "/") || strings.Contains(c.Path, "..") {
			return fmt.Errorf("collections[%d]: path %q must be repository-relative", i, c.Path)
		}
	}

	if s.I18N.DefaultLocale != "" && len(s.I18N.Locales) > 0 {
		found := false
		for _, locale := range s.I18N.Locales {
			if locale == s.I18N.DefaultLocale {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("i18n: default locale %q is not in the locale list", s.I18N.DefaultLocale)
		}
	}

	return nil
}

// CollectionBySlug resolves a collection or reports model.ErrCollectionNotFound.
func (s *Schema) CollectionBySlug(slug string) (*Collection, error) {
	for i := range s.Collections {
		if s.Collections[i].Slug == slug {
			return &s.Collections[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", model.ErrCollectionNotFound, slug)
}

// DefaultLocale returns the configured default locale, falling back to "en".
func (s *Schema) DefaultLocale() string {
	if s.I18N.DefaultLocale != "" {
		return s.I18N.DefaultLocale
	}

	return "en"
}

// TitleFieldName returns the field used as a record's display title.
func (c *Collection) TitleFieldName() string {
	if c.TitleField != "" {
		return c.TitleField
	}

	return "title"
}

// FieldByName looks up a field definition.
func (c *Collection) FieldByName(name string) (*Field, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i], true
		}
	}

	return nil, false
}

// HasStatusField reports whether records of this collection carry an explicit
// status field.
func (c *Collection) HasStatusField() bool {
	_, ok := c.FieldByName("status")
	return ok
}

// LocalizedFields returns the fields marked localized, in declaration order.
func (c *Collection) LocalizedFields() []Field {
	out := make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Localized {
			out = append(out, f)
		}
	}

	return out
}

// IsSingleton reports whether the collection holds exactly one record.
func (c *Collection) IsSingleton() bool {
	return c.Type == TypeSingleton
}
