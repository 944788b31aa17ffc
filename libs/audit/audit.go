// Package audit publishes filing audit events to the audit topic.
package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/linkedin/goavro"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/tax-intl/epaye-go/libs/backoff"
	"github.com/tax-intl/epaye-go/libs/backoff/retrypolicy"
	appctx "github.com/tax-intl/epaye-go/libs/context"
	errorutils "github.com/tax-intl/epaye-go/libs/errors"
	kafkautils "github.com/tax-intl/epaye-go/libs/kafka"
)

// Emitter publishes filing audit events. Emission failures are reported to the
// caller for logging but must never gate the HTTP response.
type Emitter interface {
	EmitRequestEvent(ctx context.Context, event *RequestEvent) error
	EmitResponseEvent(ctx context.Context, statusLabel string, event *ResponseEvent) error
}

const (
	requestEventCodec  = "filing_request"
	responseEventCodec = "filing_response"
)

var emitterDropTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_events_dropped_total",
		Help: "Counter of audit events that could not be published",
	},
	[]string{"event"})

// KafkaEmitter implements Emitter over a kafka writer
type KafkaEmitter struct {
	writer *kafkago.Writer
	codecs map[string]*goavro.Codec
	retry  backoff.RetryFunc
}

// NewKafkaEmitter connects a writer for the audit topic configured in ctx
func NewKafkaEmitter(ctx context.Context) (*KafkaEmitter, error) {
	topic, err := appctx.GetStringFromContext(ctx, appctx.KafkaAuditTopicCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit topic from context: %w", err)
	}

	writer, _, err := kafkautils.InitKafkaWriter(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit writer: %w", err)
	}

	codecs, err := kafkautils.GenerateCodecs(map[string]string{
		requestEventCodec:  filingRequestEventSchema,
		responseEventCodec: filingResponseEventSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit codecs: %w", err)
	}

	return &KafkaEmitter{
		writer: writer,
		codecs: codecs,
		retry:  backoff.Retry,
	}, nil
}

// EmitRequestEvent publishes an inbound filing request event
func (k *KafkaEmitter) EmitRequestEvent(ctx context.Context, event *RequestEvent) error {
	binary, err := event.CodecEncode(k.codecs[requestEventCodec])
	if err != nil {
		emitterDropTotal.WithLabelValues("request").Inc()
		// error from CodecEncode should be errorutils.Codified as data
		return errorutils.New(err, "failed to encode filing request event", errorutils.Codified{
			ErrCode: "kafka_codec",
			Retry:   false,
		})
	}

	return k.write(ctx, "request", kafkago.Message{
		Key:   []byte(event.SubmissionID),
		Value: binary,
	})
}

// EmitResponseEvent publishes the upstream response event under statusLabel
func (k *KafkaEmitter) EmitResponseEvent(ctx context.Context, statusLabel string, event *ResponseEvent) error {
	event.StatusLabel = statusLabel

	binary, err := event.CodecEncode(k.codecs[responseEventCodec])
	if err != nil {
		emitterDropTotal.WithLabelValues("response").Inc()
		// error from CodecEncode should be errorutils.Codified as data
		return errorutils.New(err, "failed to encode filing response event", errorutils.Codified{
			ErrCode: "kafka_codec",
			Retry:   false,
		})
	}

	return k.write(ctx, "response", kafkago.Message{
		Key:   []byte(event.SubmissionID),
		Value: binary,
	})
}

// Close flushes and closes the underlying writer
func (k *KafkaEmitter) Close() error {
	return k.writer.Close()
}

func (k *KafkaEmitter) write(ctx context.Context, label string, message kafkago.Message) error {
	writeOperation := func() (interface{}, error) {
		return nil, k.writer.WriteMessages(ctx, message)
	}

	_, err := k.retry(ctx, writeOperation, retrypolicy.PublishRetry(), canRetry)
	if err != nil {
		emitterDropTotal.WithLabelValues(label).Inc()
		// error from WriteMessages should be errorutils.Codified as data
		return errorutils.New(err, "failed to publish "+label+" event", errorutils.Codified{
			ErrCode: "kafka_write",
			Retry:   true,
		})
	}

	return nil
}

// canRetry - publish failures retry until the policy expires, canceled contexts do not
func canRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
