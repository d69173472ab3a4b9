package browser

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// headersFromMap converts CDP header objects. CDP folds repeated fields into
// one value separated by newlines.
func headersFromMap(m map[string]any) http.Header {
	h := make(http.Header, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		addFolded(h, k, fmt.Sprint(m[k]))
	}
	return h
}

// headersFromJSON converts a raw CDP headers object.
func headersFromJSON(raw []byte) http.Header {
	h := make(http.Header)
	if len(raw) == 0 {
		return h
	}
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		addFolded(h, key.String(), value.String())
		return true
	})
	return h
}

func addFolded(h http.Header, key, value string) {
	for _, v := range strings.Split(value, "\n") {
		h.Add(key, strings.TrimSpace(v))
	}
}

// consoleArgText renders console API arguments the way a console would:
// strings unquoted, other values as JSON, falling back to the description.
func consoleArgText(values [][]byte, descriptions []string) string {
	parts := make([]string, 0, len(values))
	for i, raw := range values {
		switch {
		case len(raw) > 0:
			r := gjson.ParseBytes(raw)
			if r.Type == gjson.String {
				parts = append(parts, r.String())
			} else {
				parts = append(parts, r.Raw)
			}
		case i < len(descriptions) && descriptions[i] != "":
			parts = append(parts, descriptions[i])
		}
	}
	return strings.Join(parts, " ")
}
