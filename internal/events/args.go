// Argument decoding helpers. The wire frame is a JSON array of
// [event, arg1, ..., argN]; per spec.md §9's "arbitrary-arity events"
// note, a handler must accept both a bare scalar/object argument and
// one wrapped in a single-element array, since different client call
// sites send either shape.
package events

import "encoding/json"

func argAt(args []json.RawMessage, i int) (json.RawMessage, bool) {
	if i < 0 || i >= len(args) {
		return nil, false
	}
	return args[i], true
}

func decodeArg(args []json.RawMessage, i int, out any) bool {
	raw, ok := argAt(args, i)
	if !ok {
		return false
	}
	// Unwrap a single-element array, e.g. [{"name":"x"}] sent in place
	// of a bare {"name":"x"}.
	var wrapped []json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped) == 1 {
		raw = wrapped[0]
	}
	return json.Unmarshal(raw, out) == nil
}

func stringArg(args []json.RawMessage, i int) string {
	var s string
	decodeArg(args, i, &s)
	return s
}
