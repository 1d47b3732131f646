package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
)

// RedisSender implements the Sender interface by storing emails in Redis.
// Used when MOCK_SERVICES is enabled so tests and local tooling can fetch
// what would have been sent.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// Send stores a representation of the email in Redis instead of sending it
// via SMTP. The key is derived from the primary recipient so the latest
// message per address can be retrieved.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	emailData := map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal mock email: %w", err)
	}

	key := fmt.Sprintf("mock:email:%s", primaryTo)
	if err := s.client.Set(ctx, key, payload, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to store mock email in redis: %w", err)
	}

	log.Printf("RedisSender: stored mock email for %s (Subject: %s)", primaryTo, subject)
	return nil
}
