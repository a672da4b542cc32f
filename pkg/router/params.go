package router

import (
	"fmt"
	"reflect"
	"strconv"
)

// Params maps parameter names to the path segments they matched. A fresh
// map is built for every dispatch.
type Params map[string]string

// Get returns the value of a parameter, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Int parses a parameter as a base 10 integer.
func (p Params) Int(name string) (int, error) {
	raw, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("router: missing param %q", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("router: param %q: %w", name, err)
	}
	return n, nil
}

// Decode copies params into the fields of the struct target points to.
// Fields opt in with a `param:"name"` tag; absent params leave the field
// untouched. Strings, booleans, integers and floats are supported.
//
//	var page struct {
//	    Section string `param:"section"`
//	    Number  int    `param:"page"`
//	}
//	err := params.Decode(&page)
func (p Params) Decode(target any) error {
	if target == nil {
		return nil
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("router: Decode needs a pointer to a struct, got %T", target)
	}

	st := rv.Elem()
	for _, field := range reflect.VisibleFields(st.Type()) {
		name, tagged := field.Tag.Lookup("param")
		raw, present := p[name]
		if !tagged || !present || !field.IsExported() || len(field.Index) != 1 {
			continue
		}
		if err := assign(st.Field(field.Index[0]), raw); err != nil {
			return fmt.Errorf("router: param %q: %w", name, err)
		}
	}
	return nil
}

// assign parses raw into dst according to dst's kind.
func assign(dst reflect.Value, raw string) error {
	switch {
	case dst.Kind() == reflect.String:
		dst.SetString(raw)
	case dst.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case dst.CanInt():
		n, err := strconv.ParseInt(raw, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(n)
	case dst.CanUint():
		n, err := strconv.ParseUint(raw, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(n)
	case dst.CanFloat():
		f, err := strconv.ParseFloat(raw, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", dst.Type())
	}
	return nil
}
