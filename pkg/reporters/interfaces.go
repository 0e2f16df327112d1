package reporters

import "context"

// Reporter delivers run events to a downstream sink (SQS, SNS, HTTP, Pub/Sub).
type Reporter interface {
	ID() string
	Type() string
	Report(ctx context.Context, evt RunEvent) error
}
