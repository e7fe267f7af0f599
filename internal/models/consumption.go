package models

import (
	"encoding/json"
	"time"
)

// ConsumptionEvent records a single dose of a substance
type ConsumptionEvent struct {
	// ID is the unique identifier for the event. Events written by older
	// versions of the bot have no ID.
	ID string

	// Dose is the quantity consumed, in catalog units
	Dose float64

	// Timestamp is when the dose was taken, always UTC. It is the zero time
	// when the persisted value could not be parsed.
	Timestamp time.Time

	// malformed is set by UnmarshalJSON when the timestamp could not be parsed
	malformed bool

	// rawTimestamp keeps an unparsable persisted timestamp so that saving the
	// event again writes back exactly what was read
	rawTimestamp string
}

type consumptionEventJSON struct {
	ID        string          `json:"id,omitempty"`
	Dose      float64         `json:"dose"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Malformed reports whether the event's persisted timestamp was unreadable
func (e ConsumptionEvent) Malformed() bool {
	return e.malformed
}

// MarshalJSON implements json.Marshaler
func (e ConsumptionEvent) MarshalJSON() ([]byte, error) {
	ts := e.rawTimestamp
	if !e.malformed {
		ts = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	tsJSON, err := json.Marshal(ts)
	if err != nil {
		return nil, err
	}

	return json.Marshal(consumptionEventJSON{
		ID:        e.ID,
		Dose:      e.Dose,
		Timestamp: tsJSON,
	})
}

// UnmarshalJSON implements json.Unmarshaler. An unreadable timestamp is not
// an error here: the event is kept as malformed and dropped on the next prune.
func (e *ConsumptionEvent) UnmarshalJSON(data []byte) error {
	var raw consumptionEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = raw.ID
	e.Dose = raw.Dose
	e.Timestamp = time.Time{}
	e.malformed = false
	e.rawTimestamp = ""

	var ts string
	if err := json.Unmarshal(raw.Timestamp, &ts); err != nil {
		e.malformed = true
		e.rawTimestamp = string(raw.Timestamp)
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, ts); err == nil {
			e.Timestamp = parsed.UTC()
			return nil
		}
	}
	e.malformed = true
	e.rawTimestamp = ts

	return nil
}

// timestampLayouts are tried in order; a timestamp without an offset is UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}
