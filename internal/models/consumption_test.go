package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumptionEventMalformed(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		malformed bool
	}{
		{name: "rfc3339", doc: `{"dose":1,"timestamp":"2025-04-05T19:00:00Z"}`},
		{name: "zero time is readable", doc: `{"dose":1,"timestamp":"0001-01-01T00:00:00Z"}`},
		{name: "no offset", doc: `{"dose":1,"timestamp":"2025-04-05T19:00:00"}`},
		{name: "garbage", doc: `{"dose":1,"timestamp":"yesterday-ish"}`, malformed: true},
		{name: "empty string", doc: `{"dose":1,"timestamp":""}`, malformed: true},
		{name: "number", doc: `{"dose":1,"timestamp":12}`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var event ConsumptionEvent
			require.NoError(t, json.Unmarshal([]byte(tt.doc), &event))
			assert.Equal(t, tt.malformed, event.Malformed())
		})
	}
}

func TestConsumptionEventZeroTimeRoundTrip(t *testing.T) {
	var event ConsumptionEvent
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","dose":1,"timestamp":"0001-01-01T00:00:00Z"}`), &event))
	assert.True(t, event.Timestamp.Equal(time.Time{}))

	encoded, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"e1","dose":1,"timestamp":"0001-01-01T00:00:00Z"}`, string(encoded))
}

func TestConsumptionEventKeepsUnreadableTimestamp(t *testing.T) {
	var event ConsumptionEvent
	require.NoError(t, json.Unmarshal([]byte(`{"dose":2,"timestamp":"yesterday-ish"}`), &event))

	encoded, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dose":2,"timestamp":"yesterday-ish"}`, string(encoded))
}
