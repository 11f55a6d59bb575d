package app

import (
	"fmt"
	"time"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/moderation"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/review"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/store"
)

type Service struct {
	Config  *Config
	Store   store.ReviewStore
	Engine  *review.Engine
	Limiter *RateLimiter
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	gateway, err := moderation.NewGeminiGateway(moderation.GeminiConfig{
		APIKey:         config.Moderation.APIKey,
		Model:          config.Moderation.Model,
		BaseURL:        config.Moderation.BaseURL,
		MaxAttempts:    config.Moderation.MaxAttempts,
		AttemptTimeout: time.Duration(config.Moderation.AttemptTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init moderation gateway: %w", err)
	}

	limiter, err := NewRateLimiter(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init rate limiter: %w", err)
	}

	engine := review.NewEngine(st, gateway, newNotifier(config), config.Policy)

	return &Service{
		Config:  config,
		Store:   st,
		Engine:  engine,
		Limiter: limiter,
	}, nil
}

// newNotifier picks mail when SMTP is configured, otherwise reports land in
// the server log only.
func newNotifier(config *Config) review.Notifier {
	if config.Notify.SMTPHost == "" || len(config.Notify.AdminEmails) == 0 {
		return &review.LogNotifier{}
	}
	return review.NewMailNotifier(
		config.Notify.SMTPHost,
		config.Notify.SMTPPort,
		config.Notify.Username,
		config.Notify.Password,
		config.Notify.From,
		config.Notify.AdminEmails,
	)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Limiter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("rate limiter: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
