// internal/infra/claimhost/server.go
package claimhost

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/infra/hoyoapi"
)

// Server is the claim-host side of the protocol. It signs users in with the
// credentials carried in the request payload; no database involved.
type Server struct {
	client           *hoyoapi.Client
	geetestSolverURL string
	log              *logrus.Logger
}

func NewServer(client *hoyoapi.Client, geetestSolverURL string, log *logrus.Logger) *Server {
	return &Server{
		client:           client,
		geetestSolverURL: geetestSolverURL,
		log:              log,
	}
}

/// Router builds the HTTP handler: GET / for health probes, POST
// /daily-reward for claim runs.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleHealth)
	r.Post("/daily-reward", s.handleDailyReward)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleDailyReward(w http.ResponseWriter, r *http.Request) {
	var payload ClaimPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.log.WithError(err).Warn("Rejecting malformed claim payload")
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	games := hoyoapi.SelectedGames(payload.claimRequest())
	message, err := s.client.ClaimAll(r.Context(), payload.UserID, games, payload.credentials(), s.geetestSolverURL)
	if err != nil {
		s.log.WithError(err).Errorf("Claim run failed for user %d", payload.UserID)
		http.Error(w, "claim failed", http.StatusInternalServerError)
		return
	}

	s.log.Infof("Claimed daily rewards for user %d (%d games)", payload.UserID, len(games))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ClaimResponse{Message: message})
}
