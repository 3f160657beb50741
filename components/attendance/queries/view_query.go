package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// ViewRequest scopes a snapshot read.
type ViewRequest struct {
	// OmitCharts drops rendered chart markup for hosts that cannot display it.
	OmitCharts bool `json:"omit_charts,omitempty"`
}

type snapshotService interface {
	Snapshot() attendance.Snapshot
}

// ViewQuery executes read-only snapshot resolution.
type ViewQuery struct {
	service snapshotService
}

// NewViewQuery builds the query.
func NewViewQuery(service snapshotService) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[ViewRequest, attendance.Snapshot] = (*ViewQuery)(nil)

// Query returns what is currently on screen.
func (q *ViewQuery) Query(ctx context.Context, req ViewRequest) (attendance.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Snapshot{}, err
	}
	snap := q.service.Snapshot()
	if req.OmitCharts {
		for target, view := range snap.Charts {
			view.HTML = ""
			snap.Charts[target] = view
		}
	}
	return snap, nil
}
