package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMaidDecodesMobileAliases(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"mobileNo", `{"_id":"m1","name":"Asha","mobileNo":"+919876543210"}`, "+919876543210"},
		{"mobile", `{"_id":"m1","name":"Asha","mobile":"+919876543211"}`, "+919876543211"},
		{"both prefers mobileNo", `{"_id":"m1","mobileNo":"1","mobile":"2"}`, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Maid
			if err := json.Unmarshal([]byte(tt.body), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if m.Mobile != tt.want {
				t.Errorf("mobile = %q, want %q", m.Mobile, tt.want)
			}
			if m.ID != "m1" {
				t.Errorf("id = %q, want m1", m.ID)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	for _, f := range Frequencies() {
		got, err := ParseFrequency(string(f))
		if err != nil {
			t.Fatalf("parse %q: %v", f, err)
		}
		if got != f {
			t.Errorf("got %q, want %q", got, f)
		}
	}
	if _, err := ParseFrequency("daily"); err == nil {
		t.Error("expected error for lowercase frequency")
	}
	if Frequencies()[0] != FrequencyDaily {
		t.Errorf("default frequency = %q, want Daily", Frequencies()[0])
	}
}

func TestParseTimestampForms(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	got, err := ParseTimestamp("2024-03-01T10:30:00Z")
	if err != nil {
		t.Fatalf("parse without millis: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = ParseTimestamp("2024-03-01T10:30:00.250Z")
	if err != nil {
		t.Fatalf("parse with millis: %v", err)
	}
	if !got.Equal(want.Add(250 * time.Millisecond)) {
		t.Errorf("got %v, want %v", got, want.Add(250*time.Millisecond))
	}

	if _, err := ParseTimestamp("01/03/2024"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestAttendanceRecordKeepsUnparseableDate(t *testing.T) {
	var rec AttendanceRecord
	body := `{"_id":"a1","date":"yesterday","taskName":"Cooking","status":"Leave"}`
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.Date.IsZero() {
		t.Error("expected zero time for unparseable date")
	}
	if rec.Date.Raw != "yesterday" {
		t.Errorf("raw = %q, want yesterday", rec.Date.Raw)
	}
	if rec.Status != "Leave" {
		t.Errorf("status = %q, want Leave", rec.Status)
	}

	out, err := json.Marshal(rec.Date)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"yesterday"` {
		t.Errorf("marshal = %s, want \"yesterday\"", out)
	}
}

func TestTaskByID(t *testing.T) {
	m := Maid{Tasks: []Task{{ID: "t1", Name: "Cooking"}, {Name: "Pending"}}}

	if task, ok := m.TaskByID("t1"); !ok || task.Name != "Cooking" {
		t.Errorf("TaskByID(t1) = %+v, %v", task, ok)
	}
	if _, ok := m.TaskByID(""); ok {
		t.Error("empty id should never match")
	}
	if m.Tasks[1].HasID() {
		t.Error("task without id reports HasID")
	}
}

func TestTaskRequestOmitsNothing(t *testing.T) {
	out, err := json.Marshal(TaskRequest{Name: "Mopping", Price: 0, Frequency: FrequencyWeekly})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Mopping","price":0,"frequency":"Weekly"}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}
