// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sanitize holds the pure, side-effect-free transforms applied to a
// request before it is allowed into a Chunk: header stripping and body
// redaction. Neither function touches I/O or shared state, which is what
// lets Store call them from concurrent Push calls before it takes its lock.
package sanitize

import (
	"encoding/json"
	"strings"
)

// StripHeaders returns a new map containing every entry of headers whose key
// is not present in sensitive. Comparison is exact-string and case-sensitive;
// the result order is unspecified.
func StripHeaders(headers map[string]string, sensitive map[string]struct{}) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if _, bad := sensitive[k]; bad {
			continue
		}
		out[k] = v
	}
	return out
}

// RedactBody removes sensitive keys from a JSON object body, or drops the
// body entirely if it is not JSON and happens to mention a sensitive key.
//
// If data parses as a top-level JSON object, every object-valued entry is
// walked depth-first and any key matching sensitive is removed at every
// level, including inside arrays of objects. Non-object JSON (arrays,
// scalars) at the top level is treated as a parse failure for this purpose,
// per the "top-level object, not any JSON value" rule.
//
// If data does not parse as a JSON object, a substring search for any
// sensitive key name is performed; a hit replaces data with the empty
// string, a miss returns data unchanged. This is deliberately coarse: a
// non-JSON body that merely mentions a sensitive field name is dropped
// rather than partially redacted.
func RedactBody(data string, sensitive map[string]struct{}) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil || obj == nil {
		return redactNonJSON(data, sensitive)
	}
	// Reject inputs where the top-level value decoded but wasn't actually an
	// object (e.g. "null" unmarshals to a nil map, already handled above).
	redactObject(obj, sensitive)
	out, err := json.Marshal(obj)
	if err != nil {
		return redactNonJSON(data, sensitive)
	}
	return string(out)
}

func redactNonJSON(data string, sensitive map[string]struct{}) string {
	for k := range sensitive {
		if strings.Contains(data, k) {
			return ""
		}
	}
	return data
}

// redactObject recurses depth-first into every object-valued entry (and into
// objects found inside arrays), deleting any key present in sensitive at
// every level it's found.
func redactObject(obj map[string]any, sensitive map[string]struct{}) {
	for k, v := range obj {
		if _, bad := sensitive[k]; bad {
			delete(obj, k)
			continue
		}
		redactValue(v, sensitive)
	}
}

func redactValue(v any, sensitive map[string]struct{}) {
	switch t := v.(type) {
	case map[string]any:
		redactObject(t, sensitive)
	case []any:
		for _, elem := range t {
			redactValue(elem, sensitive)
		}
	}
}
