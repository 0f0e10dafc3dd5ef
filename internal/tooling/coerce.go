package tooling

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
)

// bindArguments decodes an MCP tool call's raw arguments onto target,
// tolerating clients (including Claude) that send every parameter as a
// string, JSON-encoded arrays included.
func bindArguments[T any](req mcp.CallToolRequest, target *T) error {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	jsonStringHook := func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		raw, _ := data.(string)
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return data, nil
		}
		switch to.Kind() {
		case reflect.Slice, reflect.Map:
			if (strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) ||
				(strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) {
				slicePtr := reflect.New(to)
				if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
					return slicePtr.Elem().Interface(), nil
				}
			}
		case reflect.Float64, reflect.Float32, reflect.Int, reflect.Int64:
			var num json.Number
			if err := json.Unmarshal([]byte(raw), &num); err == nil {
				return num, nil
			}
		}
		return data, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(jsonStringHook),
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
