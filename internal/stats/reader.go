// Package stats reports the delivery progress of a dispatch to its owner.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"
)

type Store interface {
	DispatchState(ctx context.Context, accountID int64, channel types.Channel,
		dispatchID int64) (types.DispatchState, error)
	DispatchDetails(ctx context.Context, accountID int64, channel types.Channel,
		dispatchID int64, terminalOnly bool) ([]types.StatDetail, error)
}

type Reader struct {
	store Store
	log   *slog.Logger
}

func NewReader(store Store) *Reader {
	return &Reader{
		store: store,
		log:   slog.With("component", "stats"),
	}
}

// Stats returns the status of a dispatch of the account on the channel.
// Details are empty while the dispatch waits or is paused, contain only
// delivered and undelivered rows while it is in work, and every row once it
// is done.
func (r *Reader) Stats(ctx context.Context, account types.Account, channel types.Channel,
	rawID string) (types.DispatchStats, error) {

	rawID = strings.TrimSpace(rawID)
	if rawID == "" || rawID == "0" {
		return types.DispatchStats{}, apperrors.New(apperrors.KindMissingDispatchID, "missing dispatch id")
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id < 0 {
		return types.DispatchStats{}, apperrors.New(apperrors.KindDispatchNotFound,
			fmt.Sprintf("bad dispatch id %q", rawID))
	}

	state, err := r.store.DispatchState(ctx, account.ID, channel, id)
	if errors.Is(err, repository.ErrNotFound) {
		return types.DispatchStats{}, apperrors.New(apperrors.KindDispatchNotFound,
			fmt.Sprintf("dispatch %d not found", id))
	}
	if err != nil {
		return types.DispatchStats{}, apperrors.Wrap(apperrors.KindUndefined, err)
	}

	status := state.SendStatus
	if state.Paused {
		status = types.SendStatusPaused
	}

	details := []types.StatDetail{}
	switch status {
	case types.SendStatusInWork:
		details, err = r.store.DispatchDetails(ctx, account.ID, channel, id, true)
	case types.SendStatusDone:
		details, err = r.store.DispatchDetails(ctx, account.ID, channel, id, false)
	}
	if err != nil {
		return types.DispatchStats{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("details: %w", err))
	}

	r.log.Debug("stats read",
		"account", account.ID,
		"dispatch", id,
		"status", status.Name(),
		"details", len(details),
	)

	return types.DispatchStats{
		Name:       state.Name,
		StatusID:   status,
		StatusName: status.Name(),
		Details:    details,
	}, nil
}
