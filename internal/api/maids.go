package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/dukerupert/maidmanager/internal/model"
)

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "register", "api/auth/register", req)
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "login", "api/auth/login", req)
}

func (c *Client) authenticate(ctx context.Context, op, path string, req any) (*model.AuthResponse, error) {
	data, err := c.do(ctx, http.MethodPost, path, false, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var resp model.AuthResponse
	if err := decode(data, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Token == "" {
		return &resp, ErrNoToken
	}
	return &resp, nil
}

func (c *Client) ListMaids(ctx context.Context) ([]model.Maid, error) {
	data, err := c.do(ctx, http.MethodGet, "api/maids", true, nil)
	if err != nil {
		return nil, fmt.Errorf("list maids: %w", err)
	}
	var maids []model.Maid
	if err := decode(data, &maids); err != nil {
		return nil, fmt.Errorf("list maids: %w", err)
	}
	return maids, nil
}

func (c *Client) GetMaid(ctx context.Context, maidID string) (*model.Maid, error) {
	data, err := c.do(ctx, http.MethodGet, maidPath(maidID), true, nil)
	if err != nil {
		return nil, fmt.Errorf("get maid: %w", err)
	}
	var m model.Maid
	if err := decode(data, &m); err != nil {
		return nil, fmt.Errorf("get maid: %w", err)
	}
	return &m, nil
}

func (c *Client) AddMaid(ctx context.Context, req model.MaidRequest) (*model.Maid, error) {
	data, err := c.do(ctx, http.MethodPost, "api/maids", true, req)
	if err != nil {
		return nil, fmt.Errorf("add maid: %w", err)
	}
	var m model.Maid
	if err := decode(data, &m); err != nil {
		// the roster is re-fetched after an add, so a bare 2xx is enough
		if err == ErrEmptyBody {
			return nil, nil
		}
		return nil, fmt.Errorf("add maid: %w", err)
	}
	return &m, nil
}

func (c *Client) UpdateMaid(ctx context.Context, maidID string, req model.MaidRequest) (*model.Maid, error) {
	data, err := c.do(ctx, http.MethodPut, maidPath(maidID), true, req)
	if err != nil {
		return nil, fmt.Errorf("update maid: %w", err)
	}
	var m model.Maid
	if err := decode(data, &m); err != nil {
		return nil, fmt.Errorf("update maid: %w", err)
	}
	return &m, nil
}

func (c *Client) DeleteMaid(ctx context.Context, maidID string) error {
	if _, err := c.do(ctx, http.MethodDelete, maidPath(maidID), true, nil); err != nil {
		return fmt.Errorf("delete maid: %w", err)
	}
	return nil
}

func (c *Client) GetPayroll(ctx context.Context, maidID string) (*model.PayrollResponse, error) {
	data, err := c.do(ctx, http.MethodGet, maidPath(maidID)+"/payroll", true, nil)
	if err != nil {
		return nil, fmt.Errorf("get payroll: %w", err)
	}
	var p model.PayrollResponse
	if err := decode(data, &p); err != nil {
		return nil, fmt.Errorf("get payroll: %w", err)
	}
	return &p, nil
}

func (c *Client) AddTask(ctx context.Context, maidID string, req model.TaskRequest) (model.TaskMutation, error) {
	data, err := c.do(ctx, http.MethodPost, maidPath(maidID)+"/tasks", true, req)
	if err != nil {
		return model.TaskMutation{}, fmt.Errorf("add task: %w", err)
	}
	return decodeTaskMutation("add task", data)
}

func (c *Client) UpdateTask(ctx context.Context, maidID, taskID string, req model.TaskRequest) (model.TaskMutation, error) {
	data, err := c.do(ctx, http.MethodPut, taskPath(maidID, taskID), true, req)
	if err != nil {
		return model.TaskMutation{}, fmt.Errorf("update task: %w", err)
	}
	return decodeTaskMutation("update task", data)
}

func (c *Client) DeleteTask(ctx context.Context, maidID, taskID string) (model.TaskMutation, error) {
	data, err := c.do(ctx, http.MethodDelete, taskPath(maidID, taskID), true, nil)
	if err != nil {
		return model.TaskMutation{}, fmt.Errorf("delete task: %w", err)
	}
	return decodeTaskMutation("delete task", data)
}

func (c *Client) RequestOTP(ctx context.Context, maidID string) error {
	if _, err := c.do(ctx, http.MethodPost, "api/maids/request-otp/"+url.PathEscape(maidID), true, nil); err != nil {
		return fmt.Errorf("request otp: %w", err)
	}
	return nil
}

func (c *Client) VerifyOTP(ctx context.Context, maidID string, req model.VerifyOTPRequest) error {
	if _, err := c.do(ctx, http.MethodPost, "api/maids/verify-otp/"+url.PathEscape(maidID), true, req); err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}
	return nil
}

// AddManualAttendance returns the maid's attendance list when the gateway
// echoes it, or nil for a bare 2xx.
func (c *Client) AddManualAttendance(ctx context.Context, maidID string, req model.ManualAttendanceRequest) ([]model.AttendanceRecord, error) {
	data, err := c.do(ctx, http.MethodPost, maidPath(maidID)+"/attendance/manual", true, req)
	if err != nil {
		return nil, fmt.Errorf("add manual attendance: %w", err)
	}
	var records []model.AttendanceRecord
	if err := decode(data, &records); err != nil {
		if err == ErrEmptyBody {
			return nil, nil
		}
		return nil, fmt.Errorf("add manual attendance: %w", err)
	}
	return records, nil
}

func maidPath(maidID string) string {
	return "api/maids/" + url.PathEscape(maidID)
}

func taskPath(maidID, taskID string) string {
	return maidPath(maidID) + "/tasks/" + url.PathEscape(taskID)
}

// decodeTaskMutation accepts the three shapes task endpoints answer with:
// the updated maid, a bare task list, or no body.
func decodeTaskMutation(op string, data []byte) (model.TaskMutation, error) {
	parsed := gjson.ParseBytes(data)
	switch {
	case !parsed.Exists() || parsed.Type == gjson.Null:
		return model.TaskMutation{}, nil
	case parsed.IsArray():
		tasks := []model.Task{}
		if err := decode(data, &tasks); err != nil {
			return model.TaskMutation{}, fmt.Errorf("%s: %w", op, err)
		}
		return model.TaskMutation{Tasks: tasks}, nil
	case parsed.IsObject():
		var m model.Maid
		if err := decode(data, &m); err != nil {
			return model.TaskMutation{}, fmt.Errorf("%s: %w", op, err)
		}
		return model.TaskMutation{Maid: &m}, nil
	default:
		return model.TaskMutation{}, fmt.Errorf("%s: unexpected response %q", op, truncate(data))
	}
}
