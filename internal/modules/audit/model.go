// README: Audit record for computed quotes.
package audit

import (
	"time"

	"roadcall/internal/modules/pricing"
	"roadcall/internal/types"
)

// Record is one computed breakdown as stored for compliance review.
type Record struct {
	ID            int64
	ServiceTypeID types.ID
	JobType       pricing.JobType
	CustomerID    types.ID
	Location      types.Point
	Context       pricing.QuoteContext
	Breakdown     pricing.Breakdown
	CreatedAt     time.Time
}
