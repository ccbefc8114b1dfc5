package journal

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Generic converts sessions into plain maps and slices as they appear in
// JSON output.
func Generic(sessions []Session) (any, error) {
	if sessions == nil {
		sessions = []Session{}
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("marshal sessions: %w", err)
	}
	return oj.Parse(b)
}

// Query evaluates a JSONPath expression against the JSON form of sessions.
func Query(sessions []Session, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	data, err := Generic(sessions)
	if err != nil {
		return nil, err
	}
	return x.Get(data), nil
}
