package utils

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a loosely typed set of attributes, usually decoded from JSON,
// that is converted into a typed config.
type AttributeMap map[string]interface{}

// Has returns whether or not the given attribute is present.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// TransformAttributeMap decodes attributes into a freshly allocated T using the
// json tags of T's fields. If T is a pointer type, the pointed to value is
// allocated. Unknown attributes are an error.
func TransformAttributeMap[T any](attributes AttributeMap) (T, error) {
	var out T
	var forResult interface{}
	toT := reflect.TypeOf(out)
	if toT == nil {
		return out, errors.New("cannot transform attributes into a nil interface type")
	}
	if toT.Kind() == reflect.Ptr {
		// needs to be allocated then
		var ok bool
		out, ok = reflect.New(toT.Elem()).Interface().(T)
		if !ok {
			return out, NewUnexpectedTypeError[T](reflect.New(toT.Elem()).Interface())
		}
		forResult = out
	} else {
		forResult = &out
	}
	if err := DecodeAttributes(attributes, forResult); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeAttributes decodes attributes into the struct pointed to by to. JSON
// numbers (float64) are accepted for integer fields.
func DecodeAttributes(attributes AttributeMap, to interface{}) error {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return errors.Wrap(err, "error decoding attributes")
	}
	if len(md.Unused) != 0 {
		unused := append([]string(nil), md.Unused...)
		sort.Strings(unused)
		return errors.Errorf("unknown attributes: %s", strings.Join(unused, ", "))
	}
	return nil
}
