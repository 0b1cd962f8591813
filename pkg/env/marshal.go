// Package env renders structs tagged for caarlos0/env back into .env files.
package env

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv renders the env-tagged fields of the struct c points to as
// KEY=value lines. Zero values are skipped so defaults keep applying when the
// file is read back. Embedded structs are flattened.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return "", errors.New("env: MarshalEnv needs a non-nil struct pointer")
	}

	var lines []string
	collect(v.Elem(), &lines)
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func collect(v reflect.Value, lines *[]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		val := v.Field(i)

		if field.Anonymous && val.Kind() == reflect.Struct {
			collect(val, lines)
			continue
		}
		if !field.IsExported() {
			continue
		}

		// "KEY,required,notEmpty" -> KEY
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" || val.IsZero() {
			continue
		}
		*lines = append(*lines, key+"="+quote(formatValue(val)))
	}
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration is an int64; keep its readable form
		if v.CanInterface() {
			if s, ok := v.Interface().(fmt.Stringer); ok {
				return s.String()
			}
		}
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// quote wraps values godotenv would otherwise cut or misread.
func quote(s string) string {
	if strings.ContainsAny(s, " \t\n\"'#$\\=") {
		return strconv.Quote(s)
	}
	return s
}
