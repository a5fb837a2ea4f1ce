package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sigcast/internal/constants"
	"sigcast/internal/dispatch"
	"sigcast/internal/metrics"
	"sigcast/internal/models"
	"sigcast/internal/validation"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// channelStore is the slice of the membership store the control plane
// needs.
type channelStore interface {
	EnsureChannel(ctx context.Context, channel *models.Channel) error
	ListChannels(ctx context.Context) ([]models.Channel, error)
	AddAdmin(ctx context.Context, channel, number string) error
	CountAdmins(ctx context.Context, channel string) (int, error)
	CountSubscribers(ctx context.Context, channel string) (int, error)
}

type pendingCounter interface {
	Len() int
}

// Server exposes the operator control plane: health, channel listing and
// channel provisioning.
type Server struct {
	cfg      *models.Config
	router   *mux.Router
	registry *dispatch.Registry
	store    channelStore
	queue    pendingCounter
	logger   *logrus.Logger
	server   *http.Server
}

func NewServer(cfg *models.Config, registry *dispatch.Registry, store channelStore, queue pendingCounter, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		registry: registry,
		store:    store,
		queue:    queue,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
	s.router.HandleFunc("/channels", s.handleListChannels()).Methods(http.MethodGet)
	s.router.HandleFunc("/channels", s.handleCreateChannel()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(constants.DefaultServerReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(constants.DefaultServerWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(constants.DefaultServerIdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting control server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status         string `json:"status"`
	Channels       int    `json:"channels"`
	PendingResends int    `json:"pendingResends"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, healthResponse{
			Status:         "ok",
			Channels:       s.registry.Count(),
			PendingResends: s.queue.Len(),
		})
	}
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}

type channelResponse struct {
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`
	Polling     bool   `json:"polling"`
	Admins      int    `json:"admins"`
	Subscribers int    `json:"subscribers"`
}

// handleListChannels reports every stored channel, including ones
// provisioned over this API that are not yet in the polling
// configuration.
func (s *Server) handleListChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, err := s.store.ListChannels(r.Context())
		if err != nil {
			s.logger.WithError(err).Error("Failed to list channels")
			s.writeError(w, http.StatusInternalServerError, "failed to list channels")
			return
		}

		channels := make([]channelResponse, 0, len(stored))
		for _, channel := range stored {
			admins, err := s.store.CountAdmins(r.Context(), channel.PhoneNumber)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, "failed to count admins")
				return
			}
			subscribers, err := s.store.CountSubscribers(r.Context(), channel.PhoneNumber)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, "failed to count subscribers")
				return
			}

			channels = append(channels, channelResponse{
				PhoneNumber: channel.PhoneNumber,
				Name:        channel.Name,
				Polling:     s.registry.IsChannel(channel.PhoneNumber),
				Admins:      admins,
				Subscribers: subscribers,
			})
		}

		s.writeJSON(w, http.StatusOK, channels)
	}
}

type createChannelRequest struct {
	PhoneNumber string   `json:"phoneNumber"`
	Name        string   `json:"name"`
	Admins      []string `json:"admins"`
}

// handleCreateChannel provisions channel and admin rows in the store. The
// new channel is polled once its account is added to the configuration.
func (s *Server) handleCreateChannel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createChannelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := validation.ValidatePhoneNumber(req.PhoneNumber); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid phone number: %v", err))
			return
		}
		if req.Name == "" {
			s.writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		for _, admin := range req.Admins {
			if err := validation.ValidatePhoneNumber(admin); err != nil {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid admin number %q: %v", admin, err))
				return
			}
		}

		if err := s.store.EnsureChannel(r.Context(), &models.Channel{
			PhoneNumber: req.PhoneNumber,
			Name:        req.Name,
		}); err != nil {
			s.logger.WithError(err).Error("Failed to create channel")
			s.writeError(w, http.StatusInternalServerError, "failed to create channel")
			return
		}

		for _, admin := range req.Admins {
			if err := s.store.AddAdmin(r.Context(), req.PhoneNumber, admin); err != nil {
				s.logger.WithError(err).Error("Failed to add channel admin")
				s.writeError(w, http.StatusInternalServerError, "failed to add channel admin")
				return
			}
		}

		s.writeJSON(w, http.StatusCreated, map[string]string{"phoneNumber": req.PhoneNumber})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
