package models

import "encoding/json"

// Encounter is a field-selectable medical record read. Only identity fields
// are typed; everything the caller selected via the fields query param is
// kept raw under Fields.
type Encounter struct {
	ID        string `json:"id"`
	PatientID string `json:"patient,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`

	Fields map[string]json.RawMessage `json:"-"`
}

var knownEncounterFields = map[string]bool{
	"id": true, "patient": true, "type": true, "createdAt": true,
}

func (e *Encounter) UnmarshalJSON(data []byte) error {
	type alias Encounter
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if knownEncounterFields[k] {
			delete(raw, k)
		}
	}
	*e = Encounter(a)
	if len(raw) > 0 {
		e.Fields = raw
	}
	return nil
}

func (e Encounter) MarshalJSON() ([]byte, error) {
	type alias Encounter
	data, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	if len(e.Fields) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Fields {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
