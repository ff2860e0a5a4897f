package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/linkcode"
	"github.com/go-authgate/devicelink/internal/models"
	"github.com/go-authgate/devicelink/internal/rpcerr"
	"github.com/go-authgate/devicelink/internal/store"

	"go.uber.org/zap"
)

const (
	defaultLinkTicketTTL       = 30 * time.Minute
	defaultLinkCodeMaxAttempts = 10
)

// CodeGenerator returns a candidate link code.
type CodeGenerator func() (string, error)

// LinkTicketOption configures a LinkTicketService.
type LinkTicketOption func(*LinkTicketService)

// WithCodeGenerator replaces the random code generator.
func WithCodeGenerator(generate CodeGenerator) LinkTicketOption {
	return func(s *LinkTicketService) {
		s.generate = generate
	}
}

// WithTicketClock replaces the clock used for ticket timestamps.
func WithTicketClock(now func() time.Time) LinkTicketOption {
	return func(s *LinkTicketService) {
		s.now = now
	}
}

// LinkTicketService issues, resolves and consumes link tickets. Tickets are
// owned by the system user and cannot be read or written by players.
type LinkTicketService struct {
	storage     core.ObjectStorage
	ttl         time.Duration
	maxAttempts int
	generate    CodeGenerator
	metrics     core.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

func NewLinkTicketService(
	storage core.ObjectStorage,
	cfg *config.Config,
	recorder core.Recorder,
	logger *zap.Logger,
	opts ...LinkTicketOption,
) *LinkTicketService {
	s := &LinkTicketService{
		storage:     storage,
		ttl:         cfg.LinkTicketTTL,
		maxAttempts: cfg.LinkCodeMaxAttempts,
		generate:    linkcode.Generate,
		metrics:     recorder,
		logger:      logger,
		now:         time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = defaultLinkTicketTTL
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultLinkCodeMaxAttempts
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a ticket for deviceCredential under a fresh code. Each
// candidate is written with create-if-absent; a taken code is retried with a
// new candidate until the attempt budget runs out.
func (s *LinkTicketService) Issue(
	ctx context.Context,
	deviceCredential string,
) (*models.LinkTicket, error) {
	if deviceCredential == "" {
		return nil, rpcerr.InvalidArgument("deviceCredential is required")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			s.metrics.RecordLinkCodeIssued(false, attempt)
			return nil, rpcerr.Internal(err, "Could not generate link code")
		}

		now := s.now().UTC()
		ticket := &models.LinkTicket{
			Code:             code,
			DeviceCredential: deviceCredential,
			CreatedAt:        now,
			ExpiresAt:        now.Add(s.ttl),
		}
		value, err := json.Marshal(ticket)
		if err != nil {
			s.metrics.RecordLinkCodeIssued(false, attempt)
			return nil, rpcerr.Internal(err, "Could not encode link ticket")
		}

		_, err = s.storage.Write(ctx, &models.StorageWrite{
			Collection:      models.CollectionLinkTicket,
			Key:             code,
			UserID:          models.SystemUserID,
			Value:           string(value),
			Version:         models.VersionIfAbsent,
			PermissionRead:  models.ReadNoAccess,
			PermissionWrite: models.WriteNoAccess,
			ExpiresAt:       ticket.ExpiresAt,
		})
		if errors.Is(err, store.ErrVersionConflict) {
			s.logger.Debug("link code collision, retrying",
				zap.String("code", code),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			s.metrics.RecordLinkCodeIssued(false, attempt)
			s.logger.Error("failed to write link ticket",
				zap.String("operation", "issue_link_code"),
				zap.String("collection", models.CollectionLinkTicket),
				zap.String("key", code),
				zap.Error(err),
			)
			return nil, rpcerr.Internal(err, "Could not store link ticket")
		}

		s.metrics.RecordLinkCodeIssued(true, attempt)
		return ticket, nil
	}

	s.metrics.RecordLinkCodeIssued(false, s.maxAttempts)
	s.logger.Warn("link code space exhausted",
		zap.String("operation", "issue_link_code"),
		zap.Int("attempts", s.maxAttempts),
	)
	return nil, rpcerr.Capacity(
		"Could not allocate a link code after %d attempts",
		s.maxAttempts,
	)
}

// Resolve returns the live ticket for a user-entered code. Expired tickets
// are purged and reported as not found.
func (s *LinkTicketService) Resolve(ctx context.Context, input string) (*models.LinkTicket, error) {
	code, err := normalizeLinkCode(input)
	if err != nil {
		return nil, err
	}

	obj, err := s.storage.Read(ctx, models.CollectionLinkTicket, code, models.SystemUserID)
	if err != nil {
		s.logger.Error("failed to read link ticket",
			zap.String("operation", "resolve_link_code"),
			zap.String("collection", models.CollectionLinkTicket),
			zap.String("key", code),
			zap.Error(err),
		)
		return nil, rpcerr.Internal(err, "Could not read link ticket")
	}
	if obj == nil {
		return nil, rpcerr.NotFound("Link code not found or expired")
	}

	var ticket models.LinkTicket
	if err := json.Unmarshal([]byte(obj.Value), &ticket); err != nil {
		return nil, rpcerr.Internal(err, "Could not decode link ticket")
	}
	ticket.Code = code

	if ticket.IsExpiredAt(s.now()) {
		if err := s.storage.Delete(ctx, models.CollectionLinkTicket, code, models.SystemUserID); err != nil {
			s.logger.Warn("failed to purge expired link ticket",
				zap.String("key", code),
				zap.Error(err),
			)
		}
		return nil, rpcerr.NotFound("Link code not found or expired")
	}

	return &ticket, nil
}

// Consume deletes the ticket. Consuming an absent ticket is not an error.
func (s *LinkTicketService) Consume(ctx context.Context, input string) error {
	code, err := normalizeLinkCode(input)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, models.CollectionLinkTicket, code, models.SystemUserID); err != nil {
		s.logger.Error("failed to delete link ticket",
			zap.String("operation", "consume_link_code"),
			zap.String("collection", models.CollectionLinkTicket),
			zap.String("key", code),
			zap.Error(err),
		)
		return rpcerr.Internal(err, "Could not delete link ticket")
	}
	return nil
}

func normalizeLinkCode(input string) (string, error) {
	code, ok := linkcode.Normalize(input)
	if !ok {
		return "", rpcerr.InvalidArgument(
			"linkCode must contain %d characters from %s",
			linkcode.Length,
			linkcode.Alphabet,
		)
	}
	return code, nil
}

