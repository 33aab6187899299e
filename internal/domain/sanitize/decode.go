package sanitize

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// DecodeList parses raw as an array of T.
//
// It returns nil when raw carries no usable JSON at all, and a non-nil (possibly empty)
// slice otherwise. Scalars of the wrong JSON kind are converted where the intent is clear
// (see conform); elements that still cannot be decoded into T are dropped so one damaged
// entry does not discard the rest of the list.
func DecodeList[T any](raw string, arrayFields ...string) []T {
	value, ok := Parse(raw, ShapeArray, arrayFields...)
	if !ok {
		return nil
	}
	items, _ := value.([]any)
	typ := reflect.TypeFor[T]()
	out := make([]T, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(conform(item, typ))
		if err != nil {
			continue
		}
		var t T
		if err := json.Unmarshal(data, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// DecodeObject parses raw as a T. It returns nil when no object can be recovered.
func DecodeObject[T any](raw string, arrayFields ...string) *T {
	value, ok := Parse(raw, ShapeObject, arrayFields...)
	if !ok {
		return nil
	}
	data, err := json.Marshal(conform(value, reflect.TypeFor[T]()))
	if err != nil {
		return nil
	}
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		return nil
	}
	return &t
}

// conform rewrites decoded JSON so scalar mismatches against typ do not fail the typed
// decode: "true"/"false" strings become booleans, fractional numbers are rounded for integer
// fields, numeric strings become numbers and numbers or booleans become strings.
// Anything else is returned unchanged.
func conform(v any, typ reflect.Type) any {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		fields := jsonFields(typ)
		for k, val := range obj {
			if ft, ok := fields[strings.ToLower(k)]; ok {
				obj[k] = conform(val, ft)
			}
		}
		return obj
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok || typ.Elem().Kind() == reflect.Uint8 {
			return v
		}
		for i := range arr {
			arr[i] = conform(arr[i], typ.Elem())
		}
		return arr
	case reflect.Map:
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		for k, val := range obj {
			obj[k] = conform(val, typ.Elem())
		}
		return obj
	case reflect.Bool:
		return toBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return toInt(v)
	case reflect.Float32, reflect.Float64:
		if s, ok := v.(string); ok {
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return json.Number(strings.TrimSpace(s))
			}
		}
		return v
	case reflect.String:
		switch x := v.(type) {
		case json.Number:
			return x.String()
		case bool:
			return strconv.FormatBool(x)
		}
		return v
	default:
		return v
	}
}

// jsonFields maps lower-cased JSON member names to field types, the way encoding/json
// matches keys case-insensitively.
func jsonFields(typ reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, typ.NumField())
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[strings.ToLower(name)] = f.Type
	}
	return fields
}

func toBool(v any) any {
	switch x := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0", "":
			return false
		}
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f != 0
		}
	}
	return v
}

func toInt(v any) any {
	var n json.Number
	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	default:
		return v
	}
	if _, err := n.Int64(); err == nil {
		return n
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.Abs(f) > 1<<53 {
		return v
	}
	return json.Number(strconv.FormatInt(int64(math.Round(f)), 10))
}
