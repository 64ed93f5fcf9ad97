// Package audittrail publishes a best-effort record of admission, alert,
// and broadcast-drop decisions onto a Kafka topic, adapting the teacher's
// tri-publisher (compliance/security/ops) taxonomy to this service's three
// audit categories. Disabled transparently when KAFKA_BROKERS is unset,
// mirroring internal/platform/redis.New's nil-URL-returns-nil-client shape.
package audittrail

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"vigil/pkg/platform/circuit"
)

// Category distinguishes the three audit record kinds this service emits.
type Category string

const (
	CategoryAdmission    Category = "admission"
	CategoryAlert        Category = "alert"
	CategoryBroadcastDrop Category = "broadcast_drop"
)

// Record is one published audit entry.
type Record struct {
	Category  Category  `json:"category"`
	ActorID   string    `json:"actor_id"`
	EventID   string    `json:"event_id,omitempty"`
	Action    string    `json:"action,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// defaultTopic is the Kafka topic every record is produced onto.
const defaultTopic = "vigil.audit"

// Publisher is a best-effort, fire-and-forget audit trail publisher. Unlike
// the teacher's fail-closed compliance publisher, a publish failure here
// never fails the caller's operation — audit trail loss is an observability
// gap, not a correctness one, for this service's admission/alert decisions.
type Publisher struct {
	client  *kgo.Client
	topic   string
	sampler *Sampler
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics Metrics
}

// Metrics is the narrow observability surface the publisher reports to.
type Metrics interface {
	IncrementPublished(category string)
	IncrementPublishFailed(category string)
	IncrementSampledOut()
}

// New constructs a Publisher against the given seed brokers. An empty
// brokers list returns a nil *Publisher — every method on a nil receiver
// is a safe no-op, so callers never need a separate enabled check.
func New(brokers []string, sampler *Sampler, logger *slog.Logger, metrics Metrics) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(defaultTopic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	if sampler == nil {
		sampler = NewSampler(1.0)
	}
	ensureTopic(client, defaultTopic, logger)
	return &Publisher{
		client:  client,
		topic:   defaultTopic,
		sampler: sampler,
		breaker: circuit.New("audittrail.kafka"),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// ensureTopic creates the audit topic with a single partition if it does not
// already exist. Best-effort: a broker that already has the topic, or one
// that rejects the create because another instance beat it to it, is not an
// error worth failing startup over.
func ensureTopic(client *kgo.Client, topic string, logger *slog.Logger) {
	// kadm.Client.Close hard-closes the wrapped *kgo.Client, which the
	// publisher goes on using for every subsequent produce call — never
	// close the admin client here.
	admin := kadm.NewClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		if logger != nil {
			logger.Warn("audit topic admin request failed", "topic", topic, "error", err)
		}
		return
	}
	if r, ok := resp[topic]; ok && r.Err != nil && logger != nil {
		logger.Debug("audit topic already exists or could not be created", "topic", topic, "error", r.Err)
	}
}

// Close flushes and releases the underlying Kafka client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}

// PublishAdmission records an ingest admission decision. Admission records
// are low-signal and high-volume, so they go through the sampler; alerts
// never do (see PublishAlert).
func (p *Publisher) PublishAdmission(ctx context.Context, actorID, eventID, action string) {
	if p == nil {
		return
	}
	if !p.sampler.ShouldSample(string(CategoryAdmission)) {
		if p.metrics != nil {
			p.metrics.IncrementSampledOut()
		}
		return
	}
	p.publish(ctx, Record{Category: CategoryAdmission, ActorID: actorID, EventID: eventID, Action: action, Timestamp: time.Now()})
}

// PublishAlert records an alert creation. Alerts are never sampled out —
// they are exactly the low-volume, high-signal records this trail exists
// to preserve.
func (p *Publisher) PublishAlert(ctx context.Context, actorID, eventID, detail string) {
	if p == nil {
		return
	}
	p.publish(ctx, Record{Category: CategoryAlert, ActorID: actorID, EventID: eventID, Detail: detail, Timestamp: time.Now()})
}

// PublishBroadcastDrop records a websocket session dropping a message
// because it could not keep up.
func (p *Publisher) PublishBroadcastDrop(ctx context.Context, detail string) {
	if p == nil {
		return
	}
	p.publish(ctx, Record{Category: CategoryBroadcastDrop, Detail: detail, Timestamp: time.Now()})
}

// publish drops the record without ever touching the broker once the
// breaker trips, so a stalled Kafka cluster can't pile up produce calls
// behind the scoring pipeline's hot path.
func (p *Publisher) publish(ctx context.Context, record Record) {
	if p.breaker.IsOpen() {
		if p.metrics != nil {
			p.metrics.IncrementPublishFailed(string(record.Category))
		}
		return
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	p.client.Produce(ctx, &kgo.Record{Topic: p.topic, Value: raw}, func(_ *kgo.Record, err error) {
		if err != nil {
			p.breaker.RecordFailure()
			if p.logger != nil {
				p.logger.Warn("audit record publish failed", "category", record.Category, "error", err)
			}
			if p.metrics != nil {
				p.metrics.IncrementPublishFailed(string(record.Category))
			}
			return
		}
		p.breaker.RecordSuccess()
		if p.metrics != nil {
			p.metrics.IncrementPublished(string(record.Category))
		}
	})
}
