package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

type AttendanceRecord struct {
	ID       string           `json:"_id"`
	Date     Timestamp        `json:"date"`
	TaskName string           `json:"taskName"`
	Status   AttendanceStatus `json:"status"`
}

type ManualAttendanceRequest struct {
	Date     string           `json:"date"`
	TaskName string           `json:"taskName"`
	Status   AttendanceStatus `json:"status"`
}

type VerifyOTPRequest struct {
	OTP      string `json:"otp"`
	TaskName string `json:"taskName"`
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

// ParseTimestamp parses a gateway date, with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}

// Timestamp is an attendance date as sent by the gateway. Raw keeps the
// original text so unparseable values survive a round trip.
type Timestamp struct {
	Time time.Time
	Raw  string
}

func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{Raw: s}
		return nil
	}
	*t = Timestamp{Time: parsed, Raw: s}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
}
