package api

import (
	"net/http"

	"github.com/openbuilders/campaign-api/internal/types"
)

// StatsHandler returns the handler of the statistics endpoint of a channel.
func (s *Server) StatsHandler(channel types.Channel) APIHandler {
	return func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
		account, err := s.auth.Authenticate(r)
		if err != nil {
			return nil, err
		}

		stats, err := s.stats.Stats(r.Context(), account, channel, r.FormValue("id"))
		if err != nil {
			return nil, err
		}

		return StatsResponse{
			QueryStatus: statusSuccess,
			Name:        stats.Name,
			StatusID:    stats.StatusID,
			StatusName:  stats.StatusName,
			Details:     stats.Details,
		}, nil
	}
}
