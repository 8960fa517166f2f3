package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/maidmanager/internal/calendar"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/validate"
)

// Intent is a request sent by a bridge client.
type Intent struct {
	Intent string `json:"intent"`

	MaidID string `json:"maid_id,omitempty"`
	TaskID string `json:"task_id,omitempty"`

	Name      string  `json:"name,omitempty"`
	Mobile    string  `json:"mobile,omitempty"`
	Address   string  `json:"address,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Frequency string  `json:"frequency,omitempty"`

	OTP      string `json:"otp,omitempty"`
	TaskName string `json:"task_name,omitempty"`
	// Date is YYYY-MM-DD. DateMillis is a picker instant in UTC millis and
	// is used when Date is empty.
	Date       string `json:"date,omitempty"`
	DateMillis int64  `json:"date_millis,omitempty"`
	Status     string `json:"status,omitempty"`

	Email        string `json:"email,omitempty"`
	Password     string `json:"password,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
}

var ErrUnknownIntent = errors.New("unknown intent")

// call is a validated intent ready to run against the controllers.
type call func(ctx context.Context) error

// prepare validates in and binds it to a controller call. Validation
// failures are returned before anything is sent to the gateway.
func (b *Bridge) prepare(in Intent, now time.Time) (call, error) {
	needMaid := func() error {
		if in.MaidID == "" {
			return errors.New("maid_id is required")
		}
		return nil
	}
	needTask := func() error {
		if in.TaskID == "" {
			return errors.New("task_id is required")
		}
		return nil
	}

	switch in.Intent {
	case "register":
		if err := validate.Registration(in.Name, in.Email, in.Password, in.Confirmation); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return b.c.Auth.Register(ctx, in.Name, in.Email, in.Password) }, nil
	case "login":
		if err := validate.Required(in.Email); err != nil {
			return nil, fmt.Errorf("email: %w", err)
		}
		return func(ctx context.Context) error { return b.c.Auth.Login(ctx, in.Email, in.Password) }, nil
	case "logout":
		return func(context.Context) error { return b.c.Auth.Logout() }, nil
	case "reset_auth_result":
		return func(context.Context) error { b.c.Auth.ResetResult(); return nil }, nil

	case "fetch_roster":
		return b.c.Roster.FetchRoster, nil
	case "add_maid":
		if err := validate.Required(in.Name); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		if err := validate.Mobile(in.Mobile); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return b.c.Roster.AddMaid(ctx, in.Name, in.Mobile, in.Address) }, nil
	}

	// everything below acts on one maid
	if err := needMaid(); err != nil {
		return nil, err
	}
	d := b.c.Detail

	switch in.Intent {
	case "fetch_detail":
		return func(ctx context.Context) error { return d.FetchDetail(ctx, in.MaidID) }, nil
	case "fetch_payroll":
		return func(ctx context.Context) error { return d.FetchPayroll(ctx, in.MaidID) }, nil
	case "update_maid":
		if err := validate.Required(in.Name); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		if err := validate.Mobile(in.Mobile); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			return d.UpdateMaid(ctx, in.MaidID, in.Name, in.Mobile, in.Address)
		}, nil
	case "delete_maid":
		return func(ctx context.Context) error { return d.DeleteMaid(ctx, in.MaidID) }, nil
	case "reset_delete":
		return func(context.Context) error { d.ResetDelete(); return nil }, nil

	case "add_task", "update_task":
		if err := validate.Required(in.Name); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		freq, err := model.ParseFrequency(in.Frequency)
		if err != nil {
			return nil, err
		}
		if in.Intent == "add_task" {
			return func(ctx context.Context) error {
				return d.AddTask(ctx, in.MaidID, in.Name, in.Price, freq)
			}, nil
		}
		if err := needTask(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			return d.UpdateTask(ctx, in.MaidID, in.TaskID, in.Name, in.Price, freq)
		}, nil
	case "delete_task":
		if err := needTask(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return d.DeleteTask(ctx, in.MaidID, in.TaskID) }, nil

	case "request_otp":
		return func(ctx context.Context) error { return d.RequestOTP(ctx, in.MaidID) }, nil
	case "verify_otp":
		if err := validate.OTP(in.OTP); err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return d.VerifyOTP(ctx, in.MaidID, in.OTP, in.TaskName) }, nil
	case "reset_otp":
		return func(context.Context) error { d.ResetOTP(); return nil }, nil

	case "add_manual_attendance":
		day, err := manualDay(in, now)
		if err != nil {
			return nil, err
		}
		status := model.StatusPresent
		if in.Status != "" {
			status = model.AttendanceStatus(in.Status)
			if status != model.StatusPresent && status != model.StatusAbsent {
				return nil, fmt.Errorf("status %q is not Present or Absent", in.Status)
			}
		}
		return func(ctx context.Context) error {
			return d.AddManualAttendance(ctx, in.MaidID, day, in.TaskName, status)
		}, nil
	case "reset_manual_attendance":
		return func(context.Context) error { d.ResetManualAttendance(); return nil }, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownIntent, in.Intent)
}

// manualDay resolves the day of a manual attendance intent and checks it
// is not in the future.
func manualDay(in Intent, now time.Time) (string, error) {
	day := in.Date
	if day == "" && in.DateMillis != 0 {
		day = calendar.FormatDay(in.DateMillis)
	}
	if err := validate.ManualAttendance(day, in.TaskName); err != nil {
		return "", err
	}
	picked, err := calendar.ParseDay(day)
	if err != nil {
		return "", fmt.Errorf("date %q is not YYYY-MM-DD", day)
	}
	ms := in.DateMillis
	if in.Date != "" {
		ms = picked.UnixMilli()
	}
	if !calendar.Selectable(ms, now, time.Local) {
		return "", errors.New("attendance cannot be recorded for a future day")
	}
	return day, nil
}
