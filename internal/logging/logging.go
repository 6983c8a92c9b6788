package logging

import (
	"encoding/json"
	"log"
	"time"
)

type Fields struct {
	Component  string `json:"component"`
	OrderID    string `json:"order_id,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Log writes one JSON line to the standard logger.
func Log(fields Fields) {
	payload := struct {
		Fields
		Timestamp string `json:"timestamp"`
	}{
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"component\":%q,\"outcome\":\"log_error\",\"error\":%q}", fields.Component, err.Error())
		return
	}
	log.Print(string(data))
}
