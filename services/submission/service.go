package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/tax-intl/epaye-go/libs/audit"
	"github.com/tax-intl/epaye-go/libs/clients/auth"
	"github.com/tax-intl/epaye-go/libs/clients/chris"
	appctx "github.com/tax-intl/epaye-go/libs/context"
	"github.com/tax-intl/epaye-go/libs/govtalk"
	"github.com/tax-intl/epaye-go/libs/logging"
	srv "github.com/tax-intl/epaye-go/libs/service"
)

// defaultPollWindow is how long an accepted filing must age before a poll resolves
const defaultPollWindow = 15 * time.Second

// Service routes filings between the HTTP surface and the CHRIS bridge
type Service struct {
	jobs []srv.Job

	chris     chris.Client
	auth      auth.Client
	audit     audit.Emitter
	builder   govtalk.Builder
	converter govtalk.Converter

	flags      govtalk.Flags
	pollWindow time.Duration
	now        func() time.Time
}

// NewService - create a new submission gateway service structure
func NewService(ctx context.Context, chrisClient chris.Client, authClient auth.Client, auditEmitter audit.Emitter, builder govtalk.Builder, converter govtalk.Converter) (*Service, error) {
	var flags govtalk.Flags
	if testInLive, err := appctx.GetBoolFromContext(ctx, appctx.GovTalkTestInLiveCTXKey); err == nil {
		flags.TestInLive = testInLive
	}

	pollWindow := defaultPollWindow
	if window, err := appctx.GetDurationFromContext(ctx, appctx.PollWindowCTXKey); err == nil {
		pollWindow = window
	}

	return &Service{
		jobs:       []srv.Job{},
		chris:      chrisClient,
		auth:       authClient,
		audit:      auditEmitter,
		builder:    builder,
		converter:  converter,
		flags:      flags,
		pollWindow: pollWindow,
		now:        time.Now,
	}, nil
}

// Jobs - Implement srv.JobService interface
func (s *Service) Jobs() []srv.Job {
	return s.jobs
}

// InitService creates a service using the passed context
func InitService(ctx context.Context) (*Service, error) {
	logger := logging.Logger(ctx, "submission.InitService")

	chrisClient, err := chris.NewWithContext(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize the chris client")
		return nil, fmt.Errorf("failed to initialize chris client: %w", err)
	}

	authClient, err := auth.NewWithContext(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize the auth client")
		return nil, fmt.Errorf("failed to initialize auth client: %w", err)
	}

	auditEmitter, err := audit.NewKafkaEmitter(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize the audit emitter")
		return nil, fmt.Errorf("failed to initialize audit emitter: %w", err)
	}

	senderID, err := appctx.GetStringFromContext(ctx, appctx.GovTalkSenderIDCTXKey)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read the govtalk sender id")
		return nil, fmt.Errorf("failed to read govtalk sender id: %w", err)
	}

	version, _ := ctx.Value(appctx.VersionCTXKey).(string)
	builder := govtalk.NewBuilder(senderID, "epaye-gateway", version)

	logger.Info().Msg("creating new submission gateway service")

	return NewService(ctx, chrisClient, authClient, auditEmitter, builder, govtalk.NewConverter())
}
