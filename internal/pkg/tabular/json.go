package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// parseJSON accepts an array of objects (each a row) or a single object (one
// row). Any other shape is a ParseError.
func parseJSON(data []byte, pre *Preflight) (*Stream, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Format: "json", Reason: err.Error()}
	}

	var objects []map[string]interface{}
	switch v := doc.(type) {
	case []interface{}:
		for i, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, &ParseError{Format: "json", Reason: fmt.Sprintf("array element %d is not an object", i)}
			}
			objects = append(objects, obj)
		}
	case map[string]interface{}:
		objects = append(objects, v)
	default:
		return nil, &ParseError{Format: "json", Reason: "expected an object or an array of objects"}
	}

	// Headers are the union of keys across all rows, in stable order.
	headerSet := map[string]struct{}{}
	for _, obj := range objects {
		for k := range obj {
			headerSet[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(headerSet))
	for k := range headerSet {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	records := make([][]string, 0, len(objects))
	for _, obj := range objects {
		rec := make([]string, len(headers))
		for i, h := range headers {
			rec[i] = stringifyJSONValue(obj[h])
		}
		records = append(records, rec)
	}

	return &Stream{Headers: headers, records: records}, nil
}

func stringifyJSONValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		// nested structures keep their JSON form
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
