package env

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const redacted = "***"

var (
	ErrNotStructPointer = errors.New("env: MarshalEnv needs a pointer to a struct")

	durationType = reflect.TypeOf(time.Duration(0))
)

type marshalOptions struct {
	redact map[string]bool
}

type Option func(*marshalOptions)

// Redact replaces the values of the named keys with "***". Keys that are
// unset stay out of the output as usual.
func Redact(keys ...string) Option {
	return func(o *marshalOptions) {
		for _, k := range keys {
			o.redact[k] = true
		}
	}
}

// MarshalEnv renders the env-tagged fields of the struct c points to as
// KEY=value lines, in field order. Zero values are left out so the parser's
// envDefault applies on the next load. Values godotenv would misread are
// double-quoted.
func MarshalEnv(c any, opts ...Option) (string, error) {
	o := marshalOptions{redact: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}

	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return "", fmt.Errorf("%w, got %T", ErrNotStructPointer, c)
	}
	v = v.Elem()
	t := v.Type()

	var b strings.Builder
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		// "KEY,required,notEmpty" -> KEY
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			continue
		}

		val := v.Field(i)
		if val.IsZero() {
			continue
		}

		s, err := formatValue(val)
		if err != nil {
			return "", fmt.Errorf("env: %s: %w", key, err)
		}
		if o.redact[key] {
			s = redacted
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(s))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func formatValue(v reflect.Value) (string, error) {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String(), nil
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range parts {
			p, err := formatValue(v.Index(i))
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		// caarlos0/env splits slices on commas by default.
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported kind %s", v.Kind())
	}
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\n\r#\"'\\=") {
		return strconv.Quote(s)
	}
	return s
}
