package service

import (
	"errors"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	rejectInvalid   = "invalid"
	rejectNotFound  = "not_found"
	rejectDuplicate = "duplicate"
	rejectQuota     = "quota"
	rejectInternal  = "internal"
)

type voteMetrics struct {
	cast       prometheus.Counter
	rejections *prometheus.CounterVec
	deleted    prometheus.Counter
}

// newVoteMetrics registers the vote counters with reg. A nil registerer keeps
// the counters unregistered, which is what tests want.
func newVoteMetrics(reg prometheus.Registerer) *voteMetrics {
	factory := promauto.With(reg)
	return &voteMetrics{
		cast: factory.NewCounter(prometheus.CounterOpts{
			Name: "symposium_votes_cast_total",
			Help: "Votes recorded successfully.",
		}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "symposium_vote_rejections_total",
			Help: "Vote casts that were refused, by reason.",
		}, []string{"reason"}),
		deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "symposium_votes_deleted_total",
			Help: "Votes removed by administrators.",
		}),
	}
}

func (m *voteMetrics) rejected(err error) {
	m.rejections.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, dto.ErrInvalidRequest):
		return rejectInvalid
	case errors.Is(err, dto.ErrNotFound):
		return rejectNotFound
	case errors.Is(err, dto.ErrDuplicateVote):
		return rejectDuplicate
	case errors.Is(err, dto.ErrQuotaExhausted):
		return rejectQuota
	default:
		return rejectInternal
	}
}
