package service

import (
	"encoding/json"
	"quizhub_backend/internal/model"
	"strconv"
	"strings"
)

// gradeAnswer 服务端判题。按题型选择比较语义：
// 选择/数值/兜底按单值比较，多选按集合比较，排序与填空按序列比较，
// 匹配按键值对比较。未知题型退化为规范化后的深度相等。
func gradeAnswer(kind string, correct, response json.RawMessage) bool {
	cv, ok := decodeJSON(correct)
	if !ok {
		return false
	}
	rv, ok := decodeJSON(response)
	if !ok {
		return false
	}

	switch model.QuestionKind(kind) {
	case model.MultipleChoice, model.Fallback:
		return normScalar(unwrapSingle(cv)) == normScalar(unwrapSingle(rv))
	case model.Numerical:
		return numericEqual(unwrapSingle(cv), unwrapSingle(rv))
	case model.MultipleResponse:
		return setEqual(cv, rv)
	case model.Ordering, model.FillInTheBlank:
		return sequenceEqual(cv, rv)
	case model.Matching:
		return mappingEqual(cv, rv)
	default:
		return deepNormEqual(cv, rv)
	}
}

func decodeJSON(raw json.RawMessage) (interface{}, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// unwrapSingle 解开单元素数组包装（正确答案常以 ["4"] 形式存储）
func unwrapSingle(v interface{}) interface{} {
	if arr, ok := v.([]interface{}); ok && len(arr) == 1 {
		return arr[0]
	}
	return v
}

func normScalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		encoded, _ := json.Marshal(t)
		return string(encoded)
	}
}

const numericTolerance = 1e-6

func numericEqual(a, b interface{}) bool {
	fa, ok := toFloat(a)
	if !ok {
		return false
	}
	fb, ok := toFloat(b)
	if !ok {
		return false
	}
	diff := fa - fb
	if diff < 0 {
		diff = -diff
	}
	return diff <= numericTolerance
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asStrings(v interface{}) ([]string, bool) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, len(arr))
	for i, elem := range arr {
		out[i] = normScalar(elem)
	}
	return out, true
}

func setEqual(correct, response interface{}) bool {
	cs, ok := asStrings(correct)
	if !ok {
		return false
	}
	rs, ok := asStrings(response)
	if !ok {
		return false
	}
	if len(cs) != len(rs) {
		return false
	}
	want := make(map[string]int, len(cs))
	for _, s := range cs {
		want[s]++
	}
	for _, s := range rs {
		if want[s] == 0 {
			return false
		}
		want[s]--
	}
	return true
}

func sequenceEqual(correct, response interface{}) bool {
	cs, ok := asStrings(correct)
	if !ok {
		return false
	}
	rs, ok := asStrings(response)
	if !ok {
		return false
	}
	if len(cs) != len(rs) {
		return false
	}
	for i := range cs {
		if cs[i] != rs[i] {
			return false
		}
	}
	return true
}

func mappingEqual(correct, response interface{}) bool {
	cm, ok := correct.(map[string]interface{})
	if !ok {
		return deepNormEqual(correct, response)
	}
	rm, ok := response.(map[string]interface{})
	if !ok {
		return false
	}
	if len(cm) != len(rm) {
		return false
	}
	for k, cv := range cm {
		rv, exists := rm[k]
		if !exists || normScalar(cv) != normScalar(rv) {
			return false
		}
	}
	return true
}

func deepNormEqual(a, b interface{}) bool {
	switch at := a.(type) {
	case []interface{}:
		bt, ok := b.([]interface{})
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !deepNormEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bt, ok := b.(map[string]interface{})
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, exists := bt[k]
			if !exists || !deepNormEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return normScalar(a) == normScalar(b)
	}
}
