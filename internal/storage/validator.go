package storage

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a wire field name to a human-readable message, one entry
// per failing field, so the form layer can render each message under its
// input.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Validator checks storage config drafts before they are submitted. The
// allowed type set comes from the server's enabled-types endpoint and wins
// over the compiled-in kinds; with no server set it falls back to whatever is
// registered locally.
//
// Base validation intentionally matches the server: only type and
// accessUrlPrefix are unconditionally required. Per-variant requiredness
// (bucket credentials and so on) is a stricter opt-in used by the interactive
// form, see ValidateStrict.
type Validator struct {
	validate *validator.Validate
	allowed  map[Type]struct{}
}

func NewValidator(allowed []Type) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if len(allowed) == 0 {
		for _, k := range KnownKinds() {
			allowed = append(allowed, k.Type)
		}
	}
	set := make(map[Type]struct{}, len(allowed))
	for _, t := range allowed {
		set[Type(strings.ToLower(string(t)))] = struct{}{}
	}

	return &Validator{validate: v, allowed: set}
}

// AllowedTypes returns the active type set sorted by tag.
func (v *Validator) AllowedTypes() []Type {
	types := make([]Type, 0, len(v.allowed))
	for t := range v.allowed {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Validate applies the base rules and returns nil or a FieldErrors.
func (v *Validator) Validate(c Config) error {
	errs := FieldErrors{}

	if err := v.validate.Struct(c); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			switch fe.Field() {
			case FieldType:
				errs[FieldType] = "storage type is required"
			case FieldAccessURLPrefix:
				errs[FieldAccessURLPrefix] = "access URL prefix must not be empty"
			default:
				errs[fe.Field()] = "invalid value"
			}
		}
	}

	if c.Type != "" {
		if _, ok := v.allowed[Type(strings.ToLower(string(c.Type)))]; !ok {
			errs[FieldType] = "unsupported storage type: " + string(c.Type)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateStrict applies the base rules plus per-variant requiredness taken
// from the typed backend view. The server does not enforce these, so strict
// validation is only used where an operator is filling in a form and an
// incomplete credential block is certainly a mistake.
func (v *Validator) ValidateStrict(c Config) error {
	if err := v.Validate(c); err != nil {
		return err
	}

	backend, err := c.Backend()
	if err != nil {
		return FieldErrors{FieldType: err.Error()}
	}

	if err := v.validate.Struct(backend); err != nil {
		errs := FieldErrors{}
		for _, fe := range err.(validator.ValidationErrors) {
			field := wireFieldName(fe.StructField())
			errs[field] = field + " is required for " + string(backend.BackendType()) + " storage"
		}
		return errs
	}
	return nil
}

// wireFieldName maps a backend struct field to the server's field spelling.
func wireFieldName(structField string) string {
	switch structField {
	case "Endpoint":
		return FieldEndpoint
	case "Region":
		return FieldRegion
	case "AccountID":
		return FieldAccountID
	case "BucketName":
		return FieldBucketName
	case "AccessKeyID":
		return FieldAccessKeyID
	case "AccessKeySecret":
		return FieldAccessKeySecret
	case "User":
		return FieldUser
	case "Password":
		return FieldPassword
	default:
		return structField
	}
}
