package api

import (
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

const formContentType = "application/x-www-form-urlencoded"

// DecodeBody decodes a JSON or form-encoded request body into dst. Form
// fields are matched against dst's json tags.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == formContentType {
		return DecodeFormBody(w, r, dst)
	}
	return DecodeJSONBody(w, r, dst)
}

// DecodeFormBody parses an application/x-www-form-urlencoded body. Only the
// first value of a repeated field is used.
func DecodeFormBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("body contains a malformed form: %w", err)
	}

	fields := make(map[string]interface{}, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			optionalTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("error creating form decoder: %w", err)
	}
	if err = dec.Decode(fields); err != nil {
		return fmt.Errorf("body contains invalid form values: %w", err)
	}
	return nil
}

var optionalTimeType = reflect.TypeOf(types.OptionalTime{})

// optionalTimeHook maps an empty form value or "null" to a cleared date.
func optionalTimeHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != optionalTimeType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	if s == "" || s == "null" {
		return types.OptionalTime{Set: true}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return types.SetTime(t), nil
}
