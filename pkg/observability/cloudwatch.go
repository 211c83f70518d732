package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatumsPerCall is the PutMetricData batch limit
const maxDatumsPerCall = 1000

// MetricPutter is the slice of the CloudWatch client Metrics needs
type MetricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics buffers command and query observations and ships them to
// CloudWatch on Flush. Lambdas flush at the end of each invocation.
type Metrics struct {
	namespace string
	client    MetricPutter
	logger    *zap.Logger

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewMetrics creates a new metrics instance. A nil client turns every call into a no-op.
func NewMetrics(namespace string, client MetricPutter, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordOperation implements the bus recorder interfaces
func (m *Metrics) RecordOperation(kind, name string, duration time.Duration, err error) {
	if m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	dimensions := []types.Dimension{
		{Name: aws.String("Kind"), Value: aws.String(kind)},
		{Name: aws.String("Name"), Value: aws.String(name)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}
	now := time.Now()

	m.mu.Lock()
	m.pending = append(m.pending,
		types.MetricDatum{
			MetricName: aws.String("OperationLatency"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
		},
		types.MetricDatum{
			MetricName: aws.String("OperationCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
	)
	m.mu.Unlock()
}

// RecordSnapshot counts a written snapshot by reason
func (m *Metrics) RecordSnapshot(reason string) {
	if m.client == nil {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, types.MetricDatum{
		MetricName: aws.String("SnapshotsRecorded"),
		Dimensions: []types.Dimension{{Name: aws.String("Reason"), Value: aws.String(reason)}},
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	})
	m.mu.Unlock()
}

// Flush sends buffered data. Failures are logged, never returned, since
// metrics must not fail a request.
func (m *Metrics) Flush(ctx context.Context) {
	if m.client == nil {
		return
	}

	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for start := 0; start < len(batch); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(batch))
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			m.logger.Warn("Failed to send metrics", zap.Int("datums", end-start), zap.Error(err))
		}
	}
}

// Pending reports how many datums wait for the next Flush
func (m *Metrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
