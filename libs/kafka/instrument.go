package kafka

import (
	"context"
	"crypto/x509"

	appctx "github.com/tax-intl/epaye-go/libs/context"
	"github.com/tax-intl/epaye-go/libs/logging"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// kafkaCertNotBefore tracks when the kafka certificate becomes valid
	kafkaCertNotBefore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kafka_cert_not_before",
			Help: "Date when the kafka certificate becomes valid.",
		},
	)

	// kafkaCertNotAfter tracks when the kafka certificate expires
	kafkaCertNotAfter = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kafka_cert_not_after",
			Help: "Date when the kafka certificate expires.",
		},
	)
)

// InstrumentKafka - expose validity bounds of the cert used for the audit connection
func InstrumentKafka(ctx context.Context) {
	logger := logging.Logger(ctx, "kafka.InstrumentKafka")

	cert, ok := ctx.Value(appctx.Kafka509CertCTXKey).(*x509.Certificate)
	if !ok {
		// no cert on context
		logger.Info().Msg("no kafka cert on context, not initializing kafka instrumentation")
		return
	}

	kafkaCertNotBefore = registerGauge(kafkaCertNotBefore)
	kafkaCertNotAfter = registerGauge(kafkaCertNotAfter)

	kafkaCertNotBefore.Set(float64(cert.NotBefore.Unix()))
	kafkaCertNotAfter.Set(float64(cert.NotAfter.Unix()))

	logger.Info().
		Time("not_before", cert.NotBefore).
		Time("not_after", cert.NotAfter).
		Msg("registered kafka cert validity metrics")
}

// registerGauge keeps the collector already registered under the same name, if any
func registerGauge(gauge prometheus.Gauge) prometheus.Gauge {
	if err := prometheus.Register(gauge); err != nil {
		if ae, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return ae.ExistingCollector.(prometheus.Gauge)
		}
	}
	return gauge
}
