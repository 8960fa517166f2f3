package cli

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/dukerupert/maidmanager/internal/server"
	"github.com/dukerupert/maidmanager/internal/websocket"
)

func (a *App) serveCommand() *Command {
	var listen string
	var origins []string
	return &Command{
		Name:    "serve",
		Summary: "Stream live state to browsers over a WebSocket bridge",
		Description: "Serve runs the controllers behind a WebSocket at /ws. Every state change is\n" +
			"pushed to connected clients, and clients send intents such as\n" +
			`{"intent":"fetch_detail","maid_id":"..."}` + ".",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("serve")
			fs.StringVar(&listen, "listen", "", "address to listen on (default from config)")
			fs.StringSliceVar(&origins, "allow-origin", nil, "extra browser origin patterns allowed to connect")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := a.open(ctx); err != nil {
				return err
			}
			if listen == "" {
				listen = a.cfg.Listen
			}
			srv := server.New(websocket.Controllers{
				Auth:   a.auth,
				Roster: a.roster,
				Detail: a.detail,
			}, server.Config{OriginPatterns: origins}, a.logger)
			return srv.Serve(ctx, listen)
		},
	}
}
