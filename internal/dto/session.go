package dto

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// SessionResponse mirrors the get-session reply of the engine.
// It uses "mapstructure" tags to match the engine's snake_case keys.
// Answers and classification may arrive as JSON-encoded strings.
type SessionResponse struct {
	SessionID             string         `json:"session_id" mapstructure:"session_id"`
	Status                string         `json:"status" mapstructure:"status"`
	RequesterEmail        string         `json:"requester_email" mapstructure:"requester_email"`
	Answers               map[string]any `json:"answers" mapstructure:"answers"`
	Classification        map[string]any `json:"classification" mapstructure:"classification"`
	ProjectClassification map[string]any `json:"project_classification" mapstructure:"project_classification"`
}

var objectType = reflect.TypeOf(map[string]any{})

// parseOrDegrade turns JSON-encoded strings into objects for map targets.
// Anything that is not an object (malformed JSON, arrays, scalars) becomes nil.
func parseOrDegrade(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != objectType {
		return data, nil
	}
	switch v := data.(type) {
	case map[string]any:
		return v, nil
	case string:
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &obj); err != nil {
			return map[string]any(nil), nil
		}
		return obj, nil
	default:
		return map[string]any(nil), nil
	}
}

// DecodeSessionBody decodes a raw get-session reply. Engines that answer with a
// list of items are accepted; the first item is used.
func DecodeSessionBody(body []byte) (*domain.SessionRecord, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	if items, ok := raw.([]any); ok {
		if len(items) == 0 {
			return nil, domain.ErrSessionNotFound
		}
		raw = items[0]
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected session response of type %T", raw)
	}
	return DecodeSessionRecord(obj)
}

// DecodeSessionRecord converts the loosely typed engine reply into a SessionRecord.
// Malformed nested JSON degrades to empty values; only an undecodable top-level
// shape is an error.
func DecodeSessionRecord(raw map[string]any) (*domain.SessionRecord, error) {
	var resp SessionResponse
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       parseOrDegrade,
		WeaklyTypedInput: true,
		Result:           &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	return resp.Record(), nil
}

// Record converts the response into the domain record.
func (r SessionResponse) Record() *domain.SessionRecord {
	rec := domain.NewSessionRecord(r.SessionID)
	rec.Status = domain.SessionStatus(r.Status)
	rec.RequesterEmail = r.RequesterEmail
	rec.AnswerEntries = len(r.Answers)

	for k, v := range r.Answers {
		if s, ok := v.(string); ok && s != "" {
			rec.Answers[k] = s
		}
	}

	switch {
	case len(r.Classification) > 0:
		rec.Classification = domain.Classification(r.Classification)
	case len(r.ProjectClassification) > 0:
		rec.Classification = domain.Classification(r.ProjectClassification)
	}
	return rec
}

// NewSessionResponse builds the wire reply for rec. With encodeNested the answers
// and classification are sent as JSON strings, the way spreadsheet-backed engines
// store them.
func NewSessionResponse(rec *domain.SessionRecord, encodeNested bool) map[string]any {
	out := map[string]any{
		"session_id":      rec.SessionID,
		"status":          string(rec.Status),
		"requester_email": rec.RequesterEmail,
	}

	var answers any = rec.Answers
	var classification any = map[string]any(rec.Classification)
	if rec.Classification == nil {
		classification = nil
	}
	if encodeNested {
		answers = encode(rec.Answers)
		if rec.Classification != nil {
			classification = encode(rec.Classification)
		}
	}
	out["answers"] = answers
	out["classification"] = classification
	return out
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
