package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/dukerupert/maidmanager/internal/calendar"
	"github.com/dukerupert/maidmanager/internal/controller"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/validate"
)

// Root builds the maidmanager command tree on top of app.
func Root(a *App) *Command {
	return &Command{
		Name:        "maidmanager",
		Description: "Manage household staff, their tasks, attendance and monthly payroll.",
		Subcommands: []*Command{
			a.registerCommand(),
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.maidsCommand(),
			a.tasksCommand(),
			a.otpCommand(),
			a.attendanceCommand(),
			a.payrollCommand(),
			a.serveCommand(),
		},
	}
}

// flags returns a flag set carrying the options every command accepts.
func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/maidmanager/config.yaml)")
	fs.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	return fs
}

func (a *App) password(file, prompt string) (string, error) {
	if file != "" && file != "-" {
		return readPasswordFile(file)
	}
	return a.readSecret(prompt)
}

func (a *App) registerCommand() *Command {
	var name, email, passwordFile string
	return &Command{
		Name:    "register",
		Summary: "Create an account and log in",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("register")
			fs.StringVar(&name, "name", "", "your name")
			fs.StringVar(&email, "email", "", "account email")
			fs.StringVar(&passwordFile, "password-file", "", "read the password from a file instead of prompting")
			return fs
		},
		Examples: []Example{{Command: "maidmanager register --name Priya --email priya@example.com"}},
		Run: func(ctx context.Context, args []string) error {
			password, err := a.password(passwordFile, "Password: ")
			if err != nil {
				return err
			}
			confirmation := password
			if passwordFile == "" {
				if confirmation, err = a.readSecret("Confirm password: "); err != nil {
					return err
				}
			}
			if err := validate.Registration(name, email, password, confirmation); err != nil {
				return Failure{Message: err.Error(), Err: err}
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			if err := a.auth.Register(ctx, name, email, password); err != nil {
				return failed(a.auth.Results().Last().Message, err)
			}
			fmt.Fprintf(a.Out, "Registered and logged in as %s\n", email)
			return nil
		},
	}
}

func (a *App) loginCommand() *Command {
	var email, passwordFile string
	return &Command{
		Name:    "login",
		Summary: "Log in and remember the session",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("login")
			fs.StringVar(&email, "email", "", "account email")
			fs.StringVar(&passwordFile, "password-file", "", "read the password from a file instead of prompting")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := validate.Required(email); err != nil {
				return Failure{Message: "--email is required"}
			}
			password, err := a.password(passwordFile, "Password: ")
			if err != nil {
				return err
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			if err := a.auth.Login(ctx, email, password); err != nil {
				return failed(a.auth.Results().Last().Message, err)
			}
			fmt.Fprintf(a.Out, "Logged in as %s\n", email)
			return nil
		},
	}
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the saved session",
		Flags:   func() *pflag.FlagSet { return a.flags("logout") },
		Run: func(ctx context.Context, args []string) error {
			if err := a.open(ctx); err != nil {
				return err
			}
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show what the saved session says about you",
		Flags:   func() *pflag.FlagSet { return a.flags("whoami") },
		Run: func(ctx context.Context, args []string) error {
			if err := a.open(ctx); err != nil {
				return err
			}
			id, err := a.auth.WhoAmI()
			if errors.Is(err, controller.ErrNotAuthenticated) {
				return Failure{Message: "not logged in", Err: err}
			}
			if err != nil {
				return err
			}
			renderIdentity(a.Out, id, a.cfg.BaseURL, time.Now())
			return nil
		},
	}
}

func (a *App) maidsCommand() *Command {
	return &Command{
		Name:    "maids",
		Summary: "List, add, show, edit and remove maids",
		Subcommands: []*Command{
			a.maidsListCommand(),
			a.maidsAddCommand(),
			a.maidsShowCommand(),
			a.maidsEditCommand(),
			a.maidsDeleteCommand(),
		},
	}
}

func (a *App) maidsListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List all maids",
		Flags:   func() *pflag.FlagSet { return a.flags("list") },
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if err := a.roster.FetchRoster(ctx); err != nil {
				return failed(a.roster.State().Value().Message, err)
			}
			renderRoster(a.Out, a.roster.State().Value().Data)
			return nil
		},
	}
}

type maidFields struct {
	name, mobile, address string
}

func (f *maidFields) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "maid's name")
	fs.StringVar(&f.mobile, "mobile", "", "10-digit mobile number")
	fs.StringVar(&f.address, "address", "", "address")
}

func (f *maidFields) validate() error {
	if err := validate.Required(f.name); err != nil {
		return Failure{Message: "--name is required"}
	}
	if err := validate.Mobile(f.mobile); err != nil {
		return Failure{Message: err.Error(), Err: err}
	}
	return nil
}

func (a *App) maidsAddCommand() *Command {
	var f maidFields
	return &Command{
		Name:    "add",
		Summary: "Add a maid",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("add")
			f.addFlags(fs)
			return fs
		},
		Examples: []Example{{Command: `maidmanager maids add --name Asha --mobile 9876543210 --address "12 MG Road"`}},
		Run: func(ctx context.Context, args []string) error {
			if err := f.validate(); err != nil {
				return err
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if err := a.roster.AddMaid(ctx, f.name, f.mobile, f.address); err != nil {
				return failed(a.roster.State().Value().Message, err)
			}
			fmt.Fprintf(a.Out, "Added %s\n", f.name)
			renderRoster(a.Out, a.roster.State().Value().Data)
			return nil
		},
	}
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", Failure{Message: fmt.Sprintf("expected exactly one %s", what)}
	}
	return args[0], nil
}

func (a *App) fetchMaid(ctx context.Context, maidID string) (model.Maid, error) {
	if err := a.detail.FetchDetail(ctx, maidID); err != nil {
		return model.Maid{}, failed(a.detail.Detail().Value().Message, err)
	}
	return a.detail.Detail().Value().Data, nil
}

func (a *App) maidsShowCommand() *Command {
	return &Command{
		Name:    "show",
		Summary: "Show a maid with tasks, attendance and payroll",
		Usage:   "maidmanager maids show <maid-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("show") },
		Run: func(ctx context.Context, args []string) error {
			maidID, err := oneArg(args, "maid id")
			if err != nil {
				return err
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			maid, err := a.fetchMaid(ctx, maidID)
			if err != nil {
				return err
			}
			renderMaid(a.Out, maid, time.Local)
			if err := a.detail.FetchPayroll(ctx, maidID); err != nil {
				fmt.Fprintf(a.Out, "\nPayroll: %s\n", a.detail.Payroll().Value().Message)
				return nil
			}
			fmt.Fprintln(a.Out)
			renderPayroll(a.Out, a.detail.Payroll().Value().Data)
			return nil
		},
	}
}

func (a *App) maidsEditCommand() *Command {
	var f maidFields
	return &Command{
		Name:    "edit",
		Summary: "Change a maid's name, mobile or address",
		Usage:   "maidmanager maids edit <maid-id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("edit")
			f.addFlags(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			maidID, err := oneArg(args, "maid id")
			if err != nil {
				return err
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			current, err := a.fetchMaid(ctx, maidID)
			if err != nil {
				return err
			}
			if f.name == "" {
				f.name = current.Name
			}
			if f.mobile == "" {
				f.mobile = current.Mobile
			}
			if f.address == "" {
				f.address = current.Address
			}
			if err := f.validate(); err != nil {
				return err
			}
			if err := a.detail.UpdateMaid(ctx, maidID, f.name, f.mobile, f.address); err != nil {
				return failed(a.detail.Detail().Value().Message, err)
			}
			renderMaid(a.Out, a.detail.Detail().Value().Data, time.Local)
			return nil
		},
	}
}

func (a *App) maidsDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Remove a maid",
		Usage:   "maidmanager maids delete <maid-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("delete") },
		Run: func(ctx context.Context, args []string) error {
			maidID, err := oneArg(args, "maid id")
			if err != nil {
				return err
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if err := a.detail.DeleteMaid(ctx, maidID); err != nil {
				return failed(a.detail.Deletion().Last().Message, err)
			}
			fmt.Fprintf(a.Out, "Removed %s\n", maidID)
			return nil
		},
	}
}

type taskFields struct {
	name      string
	price     float64
	frequency string
}

func (f *taskFields) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "task name, e.g. Cooking")
	fs.Float64Var(&f.price, "price", 0, "monthly price in rupees")
	fs.StringVar(&f.frequency, "frequency", string(model.FrequencyDaily), "Daily, Weekly, Bi-weekly, Alternate Days or Monthly")
}

func (f *taskFields) parse() (model.Frequency, error) {
	if err := validate.Required(f.name); err != nil {
		return "", Failure{Message: "--name is required"}
	}
	if f.price < 0 {
		return "", Failure{Message: "--price must not be negative"}
	}
	freq, err := model.ParseFrequency(f.frequency)
	if err != nil {
		return "", Failure{Message: err.Error(), Err: err}
	}
	return freq, nil
}

func (a *App) tasksCommand() *Command {
	return &Command{
		Name:    "tasks",
		Summary: "Add, edit and remove a maid's tasks",
		Subcommands: []*Command{
			a.tasksAddCommand(),
			a.tasksEditCommand(),
			a.tasksDeleteCommand(),
		},
	}
}

// finishTask prints the tasks after a mutation, or the notice that
// explains why it failed.
func (a *App) finishTask(ctx context.Context, maidID string, run func(ctx context.Context) error) error {
	notices, cancel := a.detail.Notices().Subscribe(1)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, controller.ErrTaskUnassigned) {
			return Failure{Message: "that task has not been saved yet", Err: err}
		}
		select {
		case n := <-notices:
			return failed(n.Message, err)
		default:
			return failed("", err)
		}
	}
	renderTasks(a.Out, a.detail.Detail().Value().Data.Tasks)
	if p := a.detail.Payroll().Value(); p.IsSuccess() && p.Key == maidID {
		fmt.Fprintf(a.Out, "\nPayable this cycle: %s\n", currency(p.Data.PayableAmount))
	}
	return nil
}

func (a *App) tasksAddCommand() *Command {
	var f taskFields
	return &Command{
		Name:    "add",
		Summary: "Add a task",
		Usage:   "maidmanager tasks add <maid-id> --name <name> --price <amount> [--frequency <f>]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("add")
			f.addFlags(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			maidID, err := oneArg(args, "maid id")
			if err != nil {
				return err
			}
			freq, err := f.parse()
			if err != nil {
				return err
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			return a.finishTask(ctx, maidID, func(ctx context.Context) error {
				return a.detail.AddTask(ctx, maidID, f.name, f.price, freq)
			})
		},
	}
}

func (a *App) tasksEditCommand() *Command {
	var f taskFields
	return &Command{
		Name:    "edit",
		Summary: "Edit a task",
		Usage:   "maidmanager tasks edit <maid-id> <task-id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("edit")
			f.addFlags(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return Failure{Message: "expected a maid id and a task id"}
			}
			maidID, taskID := args[0], args[1]
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			maid, err := a.fetchMaid(ctx, maidID)
			if err != nil {
				return err
			}
			if task, ok := maid.TaskByID(taskID); ok {
				if f.name == "" {
					f.name = task.Name
				}
				if f.price == 0 {
					f.price = task.Price
				}
			}
			freq, err := f.parse()
			if err != nil {
				return err
			}
			return a.finishTask(ctx, maidID, func(ctx context.Context) error {
				return a.detail.UpdateTask(ctx, maidID, taskID, f.name, f.price, freq)
			})
		},
	}
}

func (a *App) tasksDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Remove a task",
		Usage:   "maidmanager tasks delete <maid-id> <task-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("delete") },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return Failure{Message: "expected a maid id and a task id"}
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			return a.finishTask(ctx, args[0], func(ctx context.Context) error {
				return a.detail.DeleteTask(ctx, args[0], args[1])
			})
		},
	}
}

func (a *App) otpCommand() *Command {
	var code, task string
	return &Command{
		Name:    "otp",
		Summary: "Mark attendance with a one-time code sent to the maid",
		Subcommands: []*Command{
			{
				Name:    "request",
				Summary: "Send a code to the maid's phone",
				Usage:   "maidmanager otp request <maid-id>",
				Flags:   func() *pflag.FlagSet { return a.flags("request") },
				Run: func(ctx context.Context, args []string) error {
					maidID, err := oneArg(args, "maid id")
					if err != nil {
						return err
					}
					if err := a.requireLogin(ctx); err != nil {
						return err
					}
					if err := a.detail.RequestOTP(ctx, maidID); err != nil {
						return failed(a.detail.OTP().Last().Message, err)
					}
					fmt.Fprintln(a.Out, "Code sent. Run 'maidmanager otp verify' with the code the maid received.")
					return nil
				},
			},
			{
				Name:    "verify",
				Summary: "Submit the code and mark the maid present",
				Usage:   "maidmanager otp verify <maid-id> --code <6 digits> --task <name>",
				Flags: func() *pflag.FlagSet {
					fs := a.flags("verify")
					fs.StringVar(&code, "code", "", "the 6-digit code")
					fs.StringVar(&task, "task", "", "task the attendance is for")
					return fs
				},
				Run: func(ctx context.Context, args []string) error {
					maidID, err := oneArg(args, "maid id")
					if err != nil {
						return err
					}
					if err := validate.OTP(code); err != nil {
						return Failure{Message: err.Error(), Err: err}
					}
					if err := a.requireLogin(ctx); err != nil {
						return err
					}
					if err := a.detail.VerifyOTP(ctx, maidID, code, task); err != nil {
						return failed(a.detail.OTP().Last().Message, err)
					}
					fmt.Fprintln(a.Out, "Attendance marked")
					renderAttendance(a.Out, a.detail.Detail().Value().Data.Attendance, time.Local)
					return nil
				},
			},
		},
	}
}

func (a *App) attendanceCommand() *Command {
	var day, task string
	var absent bool
	return &Command{
		Name:    "attendance",
		Summary: "List attendance or record a past day by hand",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List attendance, newest first",
				Usage:   "maidmanager attendance list <maid-id>",
				Flags:   func() *pflag.FlagSet { return a.flags("list") },
				Run: func(ctx context.Context, args []string) error {
					maidID, err := oneArg(args, "maid id")
					if err != nil {
						return err
					}
					if err := a.requireLogin(ctx); err != nil {
						return err
					}
					maid, err := a.fetchMaid(ctx, maidID)
					if err != nil {
						return err
					}
					renderAttendance(a.Out, maid.Attendance, time.Local)
					return nil
				},
			},
			{
				Name:    "mark",
				Summary: "Record attendance for today or an earlier day",
				Usage:   "maidmanager attendance mark <maid-id> --date YYYY-MM-DD --task <name> [--absent]",
				Flags: func() *pflag.FlagSet {
					fs := a.flags("mark")
					fs.StringVar(&day, "date", "", "day to record, YYYY-MM-DD (default today)")
					fs.StringVar(&task, "task", "", "task the attendance is for")
					fs.BoolVar(&absent, "absent", false, "record an absence instead of presence")
					return fs
				},
				Run: func(ctx context.Context, args []string) error {
					maidID, err := oneArg(args, "maid id")
					if err != nil {
						return err
					}
					if day == "" {
						day = time.Now().Format(calendar.DayLayout)
					}
					if err := validate.ManualAttendance(day, task); err != nil {
						return Failure{Message: err.Error(), Err: err}
					}
					picked, err := calendar.ParseDay(day)
					if err != nil {
						return Failure{Message: fmt.Sprintf("--date %q is not YYYY-MM-DD", day), Err: err}
					}
					ms := picked.UnixMilli()
					if !calendar.Selectable(ms, time.Now(), time.Local) {
						return Failure{Message: "attendance cannot be recorded for a future day"}
					}
					status := model.StatusPresent
					if absent {
						status = model.StatusAbsent
					}
					if err := a.requireLogin(ctx); err != nil {
						return err
					}
					if err := a.detail.AddManualAttendance(ctx, maidID, calendar.FormatDay(ms), task, status); err != nil {
						return failed(a.detail.ManualAttendance().Last().Message, err)
					}
					fmt.Fprintf(a.Out, "Recorded %s for %s on %s\n", status, task, calendar.FormatDay(ms))
					return nil
				},
			},
		},
	}
}

func (a *App) payrollCommand() *Command {
	return &Command{
		Name:    "payroll",
		Summary: "Show this billing cycle's salary and deductions",
		Usage:   "maidmanager payroll <maid-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("payroll") },
		Run: func(ctx context.Context, args []string) error {
			maidID, err := oneArg(args, "maid id")
			if err != nil {
				return err
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			if err := a.detail.FetchPayroll(ctx, maidID); err != nil {
				return failed(a.detail.Payroll().Value().Message, err)
			}
			renderPayroll(a.Out, a.detail.Payroll().Value().Data)
			return nil
		},
	}
}
