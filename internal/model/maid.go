package model

import (
	"encoding/json"
	"fmt"
)

type Maid struct {
	ID         string             `json:"_id"`
	Name       string             `json:"name"`
	Mobile     string             `json:"mobileNo"`
	Address    string             `json:"address"`
	User       string             `json:"user"`
	Tasks      []Task             `json:"tasks"`
	Attendance []AttendanceRecord `json:"attendance"`
}

// UnmarshalJSON accepts the mobile number under either "mobileNo" or "mobile".
func (m *Maid) UnmarshalJSON(data []byte) error {
	type maidAlias Maid
	var raw struct {
		maidAlias
		AltMobile string `json:"mobile"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Maid(raw.maidAlias)
	if m.Mobile == "" {
		m.Mobile = raw.AltMobile
	}
	return nil
}

// TaskByID returns the task with the given server id.
func (m *Maid) TaskByID(id string) (Task, bool) {
	if id == "" {
		return Task{}, false
	}
	for _, t := range m.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// TaskNames lists task names in server order.
func (m *Maid) TaskNames() []string {
	names := make([]string, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		names = append(names, t.Name)
	}
	return names
}

type Frequency string

const (
	FrequencyDaily         Frequency = "Daily"
	FrequencyWeekly        Frequency = "Weekly"
	FrequencyBiWeekly      Frequency = "Bi-weekly"
	FrequencyAlternateDays Frequency = "Alternate Days"
	FrequencyMonthly       Frequency = "Monthly"
)

// Frequencies returns the selectable frequencies, default first.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyBiWeekly,
		FrequencyAlternateDays,
		FrequencyMonthly,
	}
}

// ParseFrequency matches s against the known frequencies exactly.
func ParseFrequency(s string) (Frequency, error) {
	for _, f := range Frequencies() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

type Task struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Frequency Frequency `json:"frequency"`
}

// HasID reports whether the server has assigned the task an id.
func (t Task) HasID() bool {
	return t.ID != ""
}

type MaidRequest struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobileNo"`
	Address string `json:"address"`
}

type TaskRequest struct {
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Frequency Frequency `json:"frequency"`
}

// TaskMutation is the result of a task add, update or delete. The gateway
// answers with the updated maid, a bare task list, or nothing at all.
type TaskMutation struct {
	Maid  *Maid
	Tasks []Task
}

// Empty reports whether the gateway returned no body.
func (m TaskMutation) Empty() bool {
	return m.Maid == nil && m.Tasks == nil
}
