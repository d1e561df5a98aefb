// control/decode_hook.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// stringToKindHookFunc normalizes executor kinds ("Fixed", " sync ").
func stringToKindHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(ExecutorKind("")) {
			return data, nil
		}
		s := strings.ToLower(strings.TrimSpace(data.(string)))
		if s == "sync" {
			s = string(KindSynchronous)
		}
		return ExecutorKind(s), nil
	}
}

// DecodeHook is applied by viper while building Config.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringToKindHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
