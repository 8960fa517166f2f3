package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/maidmanager/internal/api"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/observe"
)

type DetailAPI interface {
	GetMaid(ctx context.Context, maidID string) (*model.Maid, error)
	UpdateMaid(ctx context.Context, maidID string, req model.MaidRequest) (*model.Maid, error)
	DeleteMaid(ctx context.Context, maidID string) error
	GetPayroll(ctx context.Context, maidID string) (*model.PayrollResponse, error)
	AddTask(ctx context.Context, maidID string, req model.TaskRequest) (model.TaskMutation, error)
	UpdateTask(ctx context.Context, maidID, taskID string, req model.TaskRequest) (model.TaskMutation, error)
	DeleteTask(ctx context.Context, maidID, taskID string) (model.TaskMutation, error)
	RequestOTP(ctx context.Context, maidID string) error
	VerifyOTP(ctx context.Context, maidID string, req model.VerifyOTPRequest) error
	AddManualAttendance(ctx context.Context, maidID string, req model.ManualAttendanceRequest) ([]model.AttendanceRecord, error)
}

var (
	// ErrTaskUnassigned is returned, without any request being sent, for
	// task operations on a task the gateway has not given an id yet.
	ErrTaskUnassigned = errors.New("task has no id yet")
	// ErrForeignMaid is returned when a task response names another maid.
	ErrForeignMaid = errors.New("response belongs to a different maid")
)

// Detail drives everything shown for one maid: the record itself, its
// tasks, attendance and payroll. Detail and payroll are durable states;
// OTP, manual attendance, deletion and task notices are one-shot events.
type Detail struct {
	api    DetailAPI
	roster RosterRefresher
	logger *slog.Logger

	detail   *observe.State[Load[model.Maid]]
	payroll  *observe.State[Load[model.PayrollResponse]]
	otp      *observe.Events[OTPState]
	manual   *observe.Events[Action]
	deletion *observe.Events[Action]
	notices  *observe.Events[Notice]
}

// NewDetail creates the controller. roster may be nil when no roster is
// displayed.
func NewDetail(a DetailAPI, roster RosterRefresher, logger *slog.Logger) *Detail {
	return &Detail{
		api:      a,
		roster:   roster,
		logger:   logger,
		detail:   observe.NewState(Loading[model.Maid]("")),
		payroll:  observe.NewState(Loading[model.PayrollResponse]("")),
		otp:      observe.NewEvents(OTPState{Kind: PhaseIdle}),
		manual:   observe.NewEvents(Action{Kind: PhaseIdle}),
		deletion: observe.NewEvents(Action{Kind: PhaseIdle}),
		notices:  observe.NewEvents(Notice{}),
	}
}

func (d *Detail) Detail() *observe.State[Load[model.Maid]] { return d.detail }

func (d *Detail) Payroll() *observe.State[Load[model.PayrollResponse]] { return d.payroll }

func (d *Detail) OTP() *observe.Events[OTPState] { return d.otp }

func (d *Detail) ManualAttendance() *observe.Events[Action] { return d.manual }

func (d *Detail) Deletion() *observe.Events[Action] { return d.deletion }

func (d *Detail) Notices() *observe.Events[Notice] { return d.notices }

// enterLoading publishes Loading unless the channel already shows this
// maid, so a background refresh after a mutation does not flicker.
func enterLoading[T any](s *observe.State[Load[T]], maidID string) {
	s.UpdateIf(func(cur Load[T]) (Load[T], bool) {
		if cur.IsSuccess() && cur.Key == maidID {
			return cur, false
		}
		return Loading[T](maidID), true
	})
}

func (d *Detail) FetchDetail(ctx context.Context, maidID string) error {
	enterLoading(d.detail, maidID)

	m, err := d.api.GetMaid(ctx, maidID)
	if err != nil {
		d.detail.Set(Failed[model.Maid](maidID, api.Message(err, "Failed to load details")))
		return err
	}
	d.detail.Set(Loaded(maidID, *m))
	return nil
}

func (d *Detail) FetchPayroll(ctx context.Context, maidID string) error {
	enterLoading(d.payroll, maidID)

	p, err := d.api.GetPayroll(ctx, maidID)
	if err != nil {
		d.payroll.Set(Failed[model.PayrollResponse](maidID, api.Message(err, "Failed to calculate payroll")))
		return err
	}
	d.payroll.Set(Loaded(maidID, *p))
	return nil
}

type refresh struct {
	detail  bool
	payroll bool
	roster  bool
}

// refreshAfter re-fetches the requested channels concurrently, once each.
// Their failures land on their own channels.
func (d *Detail) refreshAfter(ctx context.Context, maidID string, r refresh) {
	var g errgroup.Group
	if r.detail {
		g.Go(func() error { return d.FetchDetail(ctx, maidID) })
	}
	if r.payroll {
		g.Go(func() error { return d.FetchPayroll(ctx, maidID) })
	}
	if r.roster && d.roster != nil {
		g.Go(func() error { return d.roster.FetchRoster(ctx) })
	}
	if err := g.Wait(); err != nil {
		d.logger.Debug("refresh after mutation", "maid_id", maidID, "error", err)
	}
}

func (d *Detail) AddTask(ctx context.Context, maidID, name string, price float64, freq model.Frequency) error {
	mut, err := d.api.AddTask(ctx, maidID, model.TaskRequest{Name: name, Price: price, Frequency: freq})
	return d.finishTaskMutation(ctx, maidID, "add_task", "Failed to add task", mut, err)
}

// UpdateTask edits a task. A task without a server id is left alone and
// ErrTaskUnassigned is returned.
func (d *Detail) UpdateTask(ctx context.Context, maidID, taskID, name string, price float64, freq model.Frequency) error {
	if taskID == "" {
		return ErrTaskUnassigned
	}
	mut, err := d.api.UpdateTask(ctx, maidID, taskID, model.TaskRequest{Name: name, Price: price, Frequency: freq})
	return d.finishTaskMutation(ctx, maidID, "update_task", "Failed to update task", mut, err)
}

// DeleteTask removes a task. A task without a server id is left alone and
// ErrTaskUnassigned is returned.
func (d *Detail) DeleteTask(ctx context.Context, maidID, taskID string) error {
	if taskID == "" {
		return ErrTaskUnassigned
	}
	mut, err := d.api.DeleteTask(ctx, maidID, taskID)
	return d.finishTaskMutation(ctx, maidID, "delete_task", "Failed to delete task", mut, err)
}

func (d *Detail) finishTaskMutation(ctx context.Context, maidID, op, fallback string, mut model.TaskMutation, err error) error {
	if err == nil && mut.Maid != nil && mut.Maid.ID != "" && mut.Maid.ID != maidID {
		err = fmt.Errorf("%s for %s: %w", op, maidID, ErrForeignMaid)
	}
	if err != nil {
		d.notices.Emit(Notice{MaidID: maidID, Op: op, Message: api.Message(err, fallback)})
		d.logger.Info("task mutation failed", "op", op, "maid_id", maidID, "error", err)
		return err
	}

	r := refresh{payroll: true, roster: true}
	switch {
	case mut.Maid != nil:
		d.detail.Set(Loaded(maidID, *mut.Maid))
	case mut.Tasks != nil:
		replaced := d.detail.UpdateIf(func(cur Load[model.Maid]) (Load[model.Maid], bool) {
			if !cur.IsSuccess() || cur.Key != maidID {
				return cur, false
			}
			m := cur.Data
			m.Tasks = mut.Tasks
			return Loaded(maidID, m), true
		})
		r.detail = !replaced
	default:
		r.detail = true
	}

	d.refreshAfter(ctx, maidID, r)
	return nil
}

// UpdateMaid edits the maid's contact details.
func (d *Detail) UpdateMaid(ctx context.Context, maidID, name, mobile, address string) error {
	m, err := d.api.UpdateMaid(ctx, maidID, model.MaidRequest{Name: name, Mobile: mobile, Address: address})
	if err != nil {
		d.detail.Set(Failed[model.Maid](maidID, api.Message(err, "Failed to update maid")))
		return err
	}
	d.detail.Set(Loaded(maidID, *m))
	d.refreshAfter(ctx, maidID, refresh{roster: true})
	return nil
}

func (d *Detail) DeleteMaid(ctx context.Context, maidID string) error {
	d.deletion.Emit(Action{Kind: PhaseLoading})

	if err := d.api.DeleteMaid(ctx, maidID); err != nil {
		d.deletion.Emit(Action{Kind: PhaseError, Message: api.Message(err, "Failed to delete maid")})
		return err
	}
	d.deletion.Emit(Action{Kind: PhaseSuccess})
	d.refreshAfter(ctx, maidID, refresh{roster: true})
	return nil
}

func (d *Detail) ResetDelete() {
	d.deletion.Emit(Action{Kind: PhaseIdle})
}

// RequestOTP asks the gateway to send the maid an attendance code.
func (d *Detail) RequestOTP(ctx context.Context, maidID string) error {
	d.otp.Emit(OTPState{Kind: PhaseLoading})

	if err := d.api.RequestOTP(ctx, maidID); err != nil {
		d.otp.Emit(OTPState{Kind: PhaseError, Message: api.Message(err, "Failed to request OTP")})
		return err
	}
	d.otp.Emit(OTPState{Kind: PhaseRequested})
	return nil
}

// VerifyOTP submits the code. The caller has already checked it is six
// digits. Success emits Verified then Idle and refreshes detail and payroll.
func (d *Detail) VerifyOTP(ctx context.Context, maidID, code, taskName string) error {
	d.otp.Emit(OTPState{Kind: PhaseLoading})

	if err := d.api.VerifyOTP(ctx, maidID, model.VerifyOTPRequest{OTP: code, TaskName: taskName}); err != nil {
		d.otp.Emit(OTPState{Kind: PhaseError, Message: api.Message(err, "Invalid OTP")})
		return err
	}
	d.otp.Emit(OTPState{Kind: PhaseVerified})
	d.otp.Emit(OTPState{Kind: PhaseIdle})
	d.refreshAfter(ctx, maidID, refresh{detail: true, payroll: true})
	return nil
}

func (d *Detail) ResetOTP() {
	d.otp.Emit(OTPState{Kind: PhaseIdle})
}

// AddManualAttendance records attendance for a past day. date is the
// UTC calendar day as YYYY-MM-DD.
func (d *Detail) AddManualAttendance(ctx context.Context, maidID, date, taskName string, status model.AttendanceStatus) error {
	d.manual.Emit(Action{Kind: PhaseLoading})

	_, err := d.api.AddManualAttendance(ctx, maidID, model.ManualAttendanceRequest{
		Date:     date,
		TaskName: taskName,
		Status:   status,
	})
	if err != nil {
		d.manual.Emit(Action{Kind: PhaseError, Message: api.Message(err, "Failed to add record")})
		return err
	}
	d.refreshAfter(ctx, maidID, refresh{detail: true, payroll: true})
	d.manual.Emit(Action{Kind: PhaseSuccess})
	return nil
}

func (d *Detail) ResetManualAttendance() {
	d.manual.Emit(Action{Kind: PhaseIdle})
}
