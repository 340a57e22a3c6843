// README: Audit sink: best-effort asynchronous persistence of every quote.
package audit

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"roadcall/internal/modules/pricing"
)

// Inserter is the persistence collaborator; satisfied by *Store.
type Inserter interface {
	Insert(ctx context.Context, rec *Record) error
}

type Service struct {
	store Inserter
	log   *zap.Logger
}

func NewService(store Inserter, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Emit records a computed breakdown off the request path. Failures are
// retried briefly, then logged and dropped; a quote is never blocked or
// failed by its audit write.
func (s *Service) Emit(q pricing.QuoteContext, b pricing.Breakdown) {
	rec := &Record{
		ServiceTypeID: q.ServiceTypeID,
		JobType:       q.JobType,
		CustomerID:    q.CustomerID,
		Location:      q.Location,
		Context:       q,
		Breakdown:     b,
		CreatedAt:     time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		op := func() error { return s.store.Insert(ctx, rec) }
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
		if err := backoff.Retry(op, policy); err != nil {
			s.log.Warn("audit write dropped", zap.Error(err),
				zap.String("service_type", string(rec.ServiceTypeID)))
		}
	}()
}
