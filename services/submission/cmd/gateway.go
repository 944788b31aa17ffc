package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	// pprof imports
	_ "net/http/pprof"

	"github.com/asaskevich/govalidator"
	sentry "github.com/getsentry/sentry-go"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdutils "github.com/tax-intl/epaye-go/cmd"
	appctx "github.com/tax-intl/epaye-go/libs/context"
	"github.com/tax-intl/epaye-go/libs/logging"
	"github.com/tax-intl/epaye-go/libs/middleware"
	servicescmd "github.com/tax-intl/epaye-go/services/cmd"
	"github.com/tax-intl/epaye-go/services/submission"
)

var (
	// GatewayServerCmd start up the filing gateway server
	GatewayServerCmd = &cobra.Command{
		Use:   "gateway",
		Short: "subcommand to start up the filing gateway server",
		Run:   cmdutils.Perform("gateway", RunGatewayServer),
	}
)

func init() {
	servicescmd.ServeCmd.AddCommand(GatewayServerCmd)

	flagBuilder := cmdutils.NewFlagBuilder(GatewayServerCmd)

	flagBuilder.Flag().String("chris-service", "",
		"the address of the CHRIS bridge").
		Bind("chris-service").
		Env("CHRIS_SERVICE")

	flagBuilder.Flag().String("chris-token", "",
		"the access token for the CHRIS bridge").
		Bind("chris-token").
		Env("CHRIS_TOKEN")

	flagBuilder.Flag().String("kafka-brokers", "",
		"kafka broker list").
		Bind("kafka-brokers").
		Env("KAFKA_BROKERS")

	flagBuilder.Flag().String("audit-topic", "filing-audit",
		"the kafka topic filing audit events are published to").
		Bind("audit-topic").
		Env("AUDIT_TOPIC")

	flagBuilder.Flag().Duration("poll-window", 15*time.Second,
		"how long an accepted filing ages before a poll resolves").
		Bind("poll-window").
		Env("POLL_WINDOW")

	flagBuilder.Flag().String("govtalk-sender-id", "",
		"the sender id stamped on outgoing govtalk envelopes").
		Bind("govtalk-sender-id").
		Env("GOVTALK_SENDER_ID")

	flagBuilder.Flag().Bool("govtalk-test-in-live", false,
		"mark outgoing govtalk envelopes as test-in-live").
		Bind("govtalk-test-in-live").
		Env("GOVTALK_TEST_IN_LIVE")

	flagBuilder.Flag().Int("rate-limit-per-min", 180,
		"rate limit per minute on the gateway surface").
		Bind("rate-limit-per-min").
		Env("RATE_LIMIT_PER_MIN")
}

// RunGatewayServer is the runner for starting up the filing gateway server
func RunGatewayServer(command *cobra.Command, args []string) error {
	ctx := command.Context()

	logger, err := appctx.GetLogger(ctx)
	if err != nil {
		ctx, logger = logging.SetupLogger(ctx)
	}

	sentryDsn := os.Getenv("SENTRY_DSN")
	if sentryDsn != "" {
		buildTime := ctx.Value(appctx.BuildTimeCTXKey).(string)
		commit := ctx.Value(appctx.CommitCTXKey).(string)
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     sentryDsn,
			Release: fmt.Sprintf("epaye-go@%s-%s", commit, buildTime),
		})
		defer sentry.Flush(2 * time.Second)
		if err != nil {
			logger.Panic().Err(err).Msg("unable to setup reporting!")
		}
	}

	// add profiling flag to enable profiling routes
	if viper.GetString("pprof-enabled") != "" {
		// pprof attaches routes to default serve mux
		// host:6061/debug/pprof/
		go func() {
			logger.Error().Err(http.ListenAndServe(":6061", http.DefaultServeMux))
		}()
	}

	// add our command line params to context
	ctx = context.WithValue(ctx, appctx.CHRISServerCTXKey, viper.GetString("chris-service"))
	ctx = context.WithValue(ctx, appctx.CHRISTokenCTXKey, viper.GetString("chris-token"))
	ctx = context.WithValue(ctx, appctx.AuthServerCTXKey, viper.GetString("auth-service"))
	ctx = context.WithValue(ctx, appctx.AuthCacheExpiryDurationCTXKey, viper.GetDuration("auth-client-cache-expiry"))
	ctx = context.WithValue(ctx, appctx.AuthCachePurgeDurationCTXKey, viper.GetDuration("auth-client-cache-purge"))
	ctx = context.WithValue(ctx, appctx.KafkaBrokersCTXKey, viper.GetString("kafka-brokers"))
	ctx = context.WithValue(ctx, appctx.KafkaAuditTopicCTXKey, viper.GetString("audit-topic"))
	ctx = context.WithValue(ctx, appctx.PollWindowCTXKey, viper.GetDuration("poll-window"))
	ctx = context.WithValue(ctx, appctx.GovTalkSenderIDCTXKey, viper.GetString("govtalk-sender-id"))
	ctx = context.WithValue(ctx, appctx.GovTalkTestInLiveCTXKey, viper.GetBool("govtalk-test-in-live"))
	ctx = context.WithValue(ctx, appctx.RateLimitPerMinuteCTXKey, viper.GetInt("rate-limit-per-min"))

	govalidator.SetFieldsRequiredByDefault(true)

	service, err := submission.InitService(ctx)
	if err != nil {
		sentry.CaptureException(err)
		logger.Panic().Err(err).Msg("submission service initialization failed")
	}

	r := servicescmd.SetupRouter(ctx)
	r.Mount("/v1/epaye/submissions", submission.Router(service))

	if err := servicescmd.SetupJobWorkers(ctx, service.Jobs()); err != nil {
		logger.Error().Err(err).Msg("failed to setup job workers")
	}

	go func() {
		err := http.ListenAndServe(":9090", middleware.Metrics())
		if err != nil {
			sentry.CaptureException(err)
			logger.Panic().Err(err).Msg("metrics HTTP server start failed!")
		}
	}()

	srv := http.Server{
		Addr:         viper.GetString("address"),
		Handler:      chi.ServerBaseContext(ctx, r),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	if err = srv.ListenAndServe(); err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("HTTP server start failed!")
	}
	return nil
}
