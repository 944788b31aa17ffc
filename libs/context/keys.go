package context

import "errors"

// CTXKey - a type for context keys
type CTXKey string

const (
	// ServiceKey - the key used for service context
	ServiceKey CTXKey = "service"
	// EnvironmentCTXKey - the key used for the application environment
	EnvironmentCTXKey CTXKey = "environment"
	// DebugLoggingCTXKey - context key for debug logging
	DebugLoggingCTXKey CTXKey = "debug_logging"
	// LogLevelCTXKey - context key for application logging level
	LogLevelCTXKey CTXKey = "log_level"
	// LogWriterCTXKey - context key for overriding the log writer
	LogWriterCTXKey CTXKey = "log_writer"
	// LoggerCTXKey - context key under which the zerolog logger lives
	LoggerCTXKey CTXKey = "logger"

	// VersionCTXKey - context key for version of code
	VersionCTXKey CTXKey = "version"
	// CommitCTXKey - context key for the commit of the code
	CommitCTXKey CTXKey = "commit"
	// BuildTimeCTXKey - context key for the build time of code
	BuildTimeCTXKey CTXKey = "build_time"

	// CHRISServerCTXKey - the context key for getting the chris bridge server
	CHRISServerCTXKey CTXKey = "chris_server"
	// CHRISTokenCTXKey - the context key for getting the chris bridge access token
	CHRISTokenCTXKey CTXKey = "chris_token"
	// AuthServerCTXKey - the context key for getting the authority service server
	AuthServerCTXKey CTXKey = "auth_server"
	// AuthCacheExpiryDurationCTXKey - context key for auth client cache expiry
	AuthCacheExpiryDurationCTXKey CTXKey = "auth_client_cache_expiry"
	// AuthCachePurgeDurationCTXKey - context key for auth client cache purge
	AuthCachePurgeDurationCTXKey CTXKey = "auth_client_cache_purge"

	// KafkaBrokersCTXKey - context key for the kafka broker list
	KafkaBrokersCTXKey CTXKey = "kafka_brokers"
	// Kafka509CertCTXKey - context key for the kafka x509 certificate
	Kafka509CertCTXKey CTXKey = "kafka_x509_cert"
	// KafkaAuditTopicCTXKey - context key for the filing audit topic
	KafkaAuditTopicCTXKey CTXKey = "kafka_audit_topic"

	// PollWindowCTXKey - context key for the poll maturity window
	PollWindowCTXKey CTXKey = "poll_window"
	// GovTalkTestInLiveCTXKey - context key for the test-in-live envelope marker
	GovTalkTestInLiveCTXKey CTXKey = "govtalk_test_in_live"
	// GovTalkSenderIDCTXKey - context key for the govtalk sender id
	GovTalkSenderIDCTXKey CTXKey = "govtalk_sender_id"

	// RateLimitPerMinuteCTXKey - the context key for getting the rate limit
	RateLimitPerMinuteCTXKey CTXKey = "rate_limit_per_min"
	// RateLimiterBurstCTXKey - context key for allowing a bursting rate limiter
	RateLimiterBurstCTXKey CTXKey = "rate_limit_burst"
)

var (
	// ErrNotInContext - error you get when you ask for something not in the context.
	ErrNotInContext = errors.New("failed to get value from context")
	// ErrValueWrongType - error you get when you ask for something, and it is not the type you expected
	ErrValueWrongType = errors.New("context value of wrong type")
)
