package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer opens X-Ray segments inside the Lambda handlers
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// StartSubsegment starts a new subsegment within an existing segment
func (t *Tracer) StartSubsegment(ctx context.Context, name string) (context.Context, *xray.Segment) {
	return xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
}

// TraceFunction runs fn inside a subsegment. Outside Lambda there is no
// parent segment and fn runs untraced.
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	if xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}

	ctx, seg := t.StartSubsegment(ctx, name)
	err := fn(ctx)
	seg.Close(err)
	return err
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
