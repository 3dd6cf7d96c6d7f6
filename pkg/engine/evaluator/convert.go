package evaluator

import (
	"fmt"
	"sort"
	"time"
)

// FromGo converts a plain Go value into its template representation.
// Maps become ordered dictionaries so iteration is deterministic.
func FromGo(v any) Object {
	switch v := v.(type) {
	case nil:
		return NULL
	case Object:
		return v
	case bool:
		return nativeBoolToBooleanObject(v)
	case int:
		return &Integer{Value: int64(v)}
	case int32:
		return &Integer{Value: int64(v)}
	case int64:
		return &Integer{Value: v}
	case float32:
		return &Float{Value: float64(v)}
	case float64:
		return &Float{Value: v}
	case string:
		return &String{Value: v}
	case time.Time:
		return &String{Value: v.Format("2006-01-02 15:04:05")}
	case []any:
		arr := &Array{Elements: make([]Object, 0, len(v))}
		for _, e := range v {
			arr.Elements = append(arr.Elements, FromGo(e))
		}
		return arr
	case []string:
		arr := &Array{Elements: make([]Object, 0, len(v))}
		for _, e := range v {
			arr.Elements = append(arr.Elements, &String{Value: e})
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := NewDictionary()
		for _, k := range keys {
			dict.Set(k, FromGo(v[k]))
		}
		return dict
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := NewDictionary()
		for _, k := range keys {
			dict.Set(k, &String{Value: v[k]})
		}
		return dict
	default:
		return &String{Value: fmt.Sprintf("%v", v)}
	}
}
