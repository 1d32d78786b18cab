package liveness

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/canermastan/hotel-operations/internal/checkin"
)

// Client issues liveness verification sessions against the configured
// face recognition provider. The actual capture happens in the guest's
// browser; the backend only hands out session identifiers and records
// the provider's verdict.
type Client struct {
	appID  string
	apiKey string
	logger *slog.Logger
}

type Config struct {
	AppID  string
	APIKey string
}

func NewClient(config Config, logger *slog.Logger) *Client {
	return &Client{
		appID:  config.AppID,
		apiKey: config.APIKey,
		logger: logger,
	}
}

func (c *Client) IssueSession() checkin.LivenessSession {
	session := checkin.LivenessSession{
		AppID:     c.appID,
		SessionID: uuid.New().String(),
	}

	c.logger.Info("liveness session issued", "session_id", session.SessionID)

	return session
}
