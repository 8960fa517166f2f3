package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesNested(t *testing.T) {
	var called string
	var got []string
	root := &Command{
		Name: "maidmanager",
		Subcommands: []*Command{{
			Name: "maids",
			Subcommands: []*Command{{
				Name: "show",
				Run: func(ctx context.Context, args []string) error {
					called, got = "maids show", args
					return nil
				},
			}},
		}},
	}

	if err := root.Execute(context.Background(), []string{"maids", "show", "m1"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if called != "maids show" || len(got) != 1 || got[0] != "m1" {
		t.Errorf("called %q with %v", called, got)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var name string
	cmd := &Command{
		Name: "add",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
			fs.StringVar(&name, "name", "", "")
			return fs
		},
		Run: func(ctx context.Context, args []string) error { return nil },
	}
	if err := cmd.Execute(context.Background(), []string{"--name", "Asha"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if name != "Asha" {
		t.Errorf("name = %q", name)
	}

	err := cmd.Execute(context.Background(), []string{"--nmae", "Asha"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unknown flag") {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	root := &Command{Name: "maidmanager", Subcommands: []*Command{{Name: "payroll", Run: func(context.Context, []string) error { return nil }}}}
	err := root.Execute(context.Background(), []string{"payrol"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), `did you mean "payroll"`) {
		t.Errorf("err = %v", err)
	}
}

func TestHelpListsSubcommands(t *testing.T) {
	var buf bytes.Buffer
	Root(NewApp(nil, &buf, &buf)).Execute(context.Background(), []string{"--help"}, &buf)
	for _, name := range []string{"login", "maids", "tasks", "otp", "attendance", "payroll", "serve"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("help missing %q:\n%s", name, buf.String())
		}
	}
}

func TestLevenshtein(t *testing.T) {
	if d := levenshtein("kitten", "sitting"); d != 3 {
		t.Errorf("distance = %d, want 3", d)
	}
	if d := levenshtein("", "abc"); d != 3 {
		t.Errorf("distance = %d, want 3", d)
	}
}
