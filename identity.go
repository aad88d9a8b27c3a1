package pagecursor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Getters maps record fields to accessors. Specify at least the primary key
// field when records are not maps and their json tags do not name it.
// Example:
//
//	pagecursor.Getters[models.Player]{
//		"id": func(p models.Player) any { return p.ID },
//	}
type Getters[T any] map[string]func(T) any

// identityOf extracts the value of field from rec. Lookup order: explicit
// getter, map key, exported struct field by json tag or (case-insensitively)
// by name. Fields of embedded structs are looked up as if declared on rec.
func identityOf[T any](rec T, field string, getters Getters[T]) (any, bool) {
	if getter, ok := getters[field]; ok {
		return getter(rec), true
	}

	if m, ok := any(rec).(map[string]any); ok {
		v, found := m[field]
		return v, found
	}

	var fields map[string]any
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Squash:  true,
		Result:  &fields,
	})
	if err != nil {
		return nil, false
	}
	if err = decoder.Decode(rec); err != nil {
		return nil, false
	}

	if v, found := fields[field]; found {
		return v, true
	}

	key, found := lo.FindKeyBy(fields, func(k string, _ any) bool {
		return strings.EqualFold(k, field)
	})
	if !found {
		return nil, false
	}

	return fields[key], true
}

// sameIdentity compares identities by their printed form, so that 7, int64(7),
// float64(7) (JSON numbers) and "7" all address the same record.
func sameIdentity(a, b any) bool {
	if lo.IsNil(a) || lo.IsNil(b) {
		return false
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func validateID(id any) error {
	if lo.IsNil(id) || reflect.ValueOf(id).IsZero() {
		return newValidationError("id", "is required")
	}

	return nil
}

// validatePayload accepts structs, non-nil maps and non-nil pointers to
// structs or maps.
func validatePayload[T any](payload T) error {
	v := reflect.ValueOf(any(payload))
	if !v.IsValid() {
		return newValidationError("payload", "is required")
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return newValidationError("payload", "is required")
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return nil
	case reflect.Map:
		if v.IsNil() {
			return newValidationError("payload", "is required")
		}
		return nil
	default:
		return newValidationError("payload", fmt.Sprintf("must be a structured record, got %s", v.Kind()))
	}
}
