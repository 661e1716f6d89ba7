package jalur

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildURL joins the base URL and address segments into a request target.
// A trailing slash on the base URL is stripped; an encoded query string, if
// non-empty, is appended. Pure function, no I/O.
func BuildURL(baseURL string, addr Address, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(baseURL, "/"))
	for _, seg := range addr {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// QueryValues flattens a read call's input into query parameters. The input
// must encode to a JSON object; nil-valued entries are omitted entirely and
// all remaining values are stringified. Parameters are emitted in sorted key
// order so identical inputs always build identical URLs. A nil input yields
// nil.
func QueryValues(input any) (url.Values, error) {
	if input == nil {
		return nil, nil
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("jalur: encode query input: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("jalur: read input must encode to an object, got %s", previewJSON(raw))
	}

	values := url.Values{}
	for name, v := range fields {
		if v == nil {
			continue
		}
		values.Set(name, stringifyQueryValue(v))
	}
	return values, nil
}

// stringifyQueryValue renders one query parameter value. Numbers keep their
// JSON form (no float mangling of integers), composites are re-encoded as
// compact JSON.
func stringifyQueryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// previewJSON truncates a JSON document for error messages.
func previewJSON(raw []byte) string {
	const max = 64
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
