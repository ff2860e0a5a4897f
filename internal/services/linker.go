package services

import (
	"context"
	"errors"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"
	"github.com/go-authgate/devicelink/internal/rpcerr"
	"github.com/go-authgate/devicelink/internal/store"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
)

// Link attempt results recorded in metrics.
const (
	LinkResultSuccess         = "success"
	LinkResultInvalid         = "invalid_argument"
	LinkResultNotFound        = "not_found"
	LinkResultUnauthenticated = "unauthenticated"
	LinkResultError           = "error"
)

// LinkRequest is the payload submitted by the companion surface after the
// OAuth redirect completes.
type LinkRequest struct {
	LinkCode         string `json:"linkCode"`
	OAuthCode        string `json:"oauthCode"`
	OAuthRedirectURL string `json:"oauthRedirectUrl"`
}

// Validate checks the request shape and returns the normalized link code.
func (r *LinkRequest) Validate() (string, error) {
	if r.OAuthRedirectURL == "" {
		return "", rpcerr.InvalidArgument("oauthRedirectUrl is required")
	}
	code, err := normalizeLinkCode(r.LinkCode)
	if err != nil {
		return "", err
	}
	if r.OAuthCode == "" {
		return "", rpcerr.InvalidArgument("oauthCode is required")
	}
	return code, nil
}

// AccountLinker binds the device credential behind a link ticket to the
// account of the provider user who completed the OAuth flow.
type AccountLinker struct {
	tickets  *LinkTicketService
	oauth    core.OAuthProvider
	accounts *providerAccounts
	metrics  core.Recorder
	logger   *zap.Logger
}

func NewAccountLinker(
	tickets *LinkTicketService,
	directory core.AccountDirectory,
	storage core.ObjectStorage,
	provider core.OAuthProvider,
	recorder core.Recorder,
	logger *zap.Logger,
) *AccountLinker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountLinker{
		tickets: tickets,
		oauth:   provider,
		accounts: &providerAccounts{
			directory: directory,
			storage:   storage,
			provider:  models.CollectionProvider,
			logger:    logger,
		},
		metrics: recorder,
		logger:  logger,
	}
}

// LinkDevice completes a link request and returns the resolved account id.
// The ticket is consumed only after the account holds both credentials, so a
// failed attempt can be retried with the same code.
func (l *AccountLinker) LinkDevice(ctx context.Context, req *LinkRequest) (string, error) {
	accountID, err := l.linkDevice(ctx, req)
	l.metrics.RecordLinkAttempt(linkResult(err))
	return accountID, err
}

func (l *AccountLinker) linkDevice(ctx context.Context, req *LinkRequest) (string, error) {
	code, err := req.Validate()
	if err != nil {
		return "", err
	}

	ticket, err := l.tickets.Resolve(ctx, code)
	if err != nil {
		return "", err
	}

	token, err := l.oauth.ExchangeCode(ctx, req.OAuthCode, req.OAuthRedirectURL)
	if err != nil {
		return "", rpcerr.Wrap(err, "Could not exchange authorization code")
	}

	identity, err := l.oauth.FetchCurrentUser(ctx, token)
	if err != nil {
		return "", rpcerr.Wrap(err, "Could not fetch provider user")
	}

	accountID, err := l.ResolveAccount(ctx, CanonicalUsername(identity), ticket.DeviceCredential)
	if err != nil {
		return "", err
	}

	if err := l.accounts.relinkCustom(ctx, accountID, token); err != nil {
		return "", err
	}
	if err := l.accounts.saveToken(ctx, accountID, token, ""); err != nil {
		return "", err
	}

	if err := l.tickets.Consume(ctx, code); err != nil {
		return "", err
	}

	if err := l.accounts.syncProfile(ctx, accountID, identity, token); err != nil {
		return "", err
	}

	l.logger.Info("device linked",
		zap.String("account_id", accountID),
		zap.String("provider", l.oauth.Name()),
		zap.String("provider_user_id", identity.ID),
	)
	return accountID, nil
}

// ResolveAccount finds or creates the account for a provider user and makes
// sure deviceCredential is bound to it. The lookup order is the account named
// username, then the account already holding deviceCredential, then a new
// account named username. Repeated calls return the same account id.
func (l *AccountLinker) ResolveAccount(
	ctx context.Context,
	username, deviceCredential string,
) (string, error) {
	directory := l.accounts.directory

	account, err := directory.FindByUsername(ctx, username)
	if err != nil {
		l.logger.Error("failed to look up account",
			zap.String("operation", "find_by_username"),
			zap.String("username", username),
			zap.Error(err),
		)
		return "", rpcerr.Internal(err, "Could not look up account")
	}
	if account != nil {
		if err := directory.LinkDevice(ctx, account.ID, deviceCredential); err != nil {
			l.logger.Error("failed to link device credential",
				zap.String("operation", "link_device"),
				zap.String("account_id", account.ID),
				zap.Error(err),
			)
			return "", rpcerr.Internal(err, "Could not link device credential")
		}
		return account.ID, nil
	}

	account, err = directory.AuthenticateDevice(ctx, deviceCredential, "", false)
	switch {
	case err == nil:
		return account.ID, nil
	case !errors.Is(err, store.ErrAccountNotFound):
		l.logger.Error("failed to authenticate device credential",
			zap.String("operation", "authenticate_device"),
			zap.Error(err),
		)
		return "", rpcerr.Internal(err, "Could not authenticate device credential")
	}

	account, err = directory.AuthenticateDevice(ctx, deviceCredential, username, true)
	if err != nil {
		l.logger.Error("failed to create account",
			zap.String("operation", "authenticate_device"),
			zap.String("username", username),
			zap.Error(err),
		)
		return "", rpcerr.Internal(err, "Could not create account")
	}
	return account.ID, nil
}

// CanonicalUsername derives the account username for a provider user.
// Provider ids are unique, so the name never collides between users.
func CanonicalUsername(identity *models.ProviderIdentity) string {
	return identity.ID
}

func linkResult(err error) string {
	switch rpcerr.CodeOf(err) {
	case codes.OK:
		return LinkResultSuccess
	case codes.InvalidArgument:
		return LinkResultInvalid
	case codes.NotFound:
		return LinkResultNotFound
	case codes.Unauthenticated:
		return LinkResultUnauthenticated
	default:
		return LinkResultError
	}
}
