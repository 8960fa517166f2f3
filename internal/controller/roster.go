package controller

import (
	"context"
	"log/slog"

	"github.com/dukerupert/maidmanager/internal/api"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/observe"
)

type RosterAPI interface {
	ListMaids(ctx context.Context) ([]model.Maid, error)
	AddMaid(ctx context.Context, req model.MaidRequest) (*model.Maid, error)
}

// RosterRefresher re-fetches the roster after a mutation elsewhere.
type RosterRefresher interface {
	FetchRoster(ctx context.Context) error
}

// Roster drives the maid list. The list order is the gateway's.
type Roster struct {
	api    RosterAPI
	logger *slog.Logger
	state  *observe.State[Load[[]model.Maid]]
}

func NewRoster(a RosterAPI, logger *slog.Logger) *Roster {
	return &Roster{
		api:    a,
		logger: logger,
		state:  observe.NewState(Loading[[]model.Maid]("")),
	}
}

func (r *Roster) State() *observe.State[Load[[]model.Maid]] { return r.state }

// FetchRoster always publishes Loading first, even on a retry.
func (r *Roster) FetchRoster(ctx context.Context) error {
	r.state.Set(Loading[[]model.Maid](""))

	maids, err := r.api.ListMaids(ctx)
	if err != nil {
		r.state.Set(Failed[[]model.Maid]("", api.Message(err, "Failed to fetch maids")))
		return err
	}
	if maids == nil {
		maids = []model.Maid{}
	}
	r.state.Set(Loaded("", maids))
	return nil
}

// AddMaid creates a maid, then re-fetches the whole roster.
func (r *Roster) AddMaid(ctx context.Context, name, mobile, address string) error {
	_, err := r.api.AddMaid(ctx, model.MaidRequest{Name: name, Mobile: mobile, Address: address})
	if err != nil {
		r.state.Set(Failed[[]model.Maid]("", api.Message(err, "Failed to add maid. Please try again.")))
		r.logger.Info("add maid failed", "error", err)
		return err
	}
	return r.FetchRoster(ctx)
}
