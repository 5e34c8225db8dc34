package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

const namespace = "amm"

// Recorder exports engine activity as Prometheus metrics.
type Recorder struct {
	instructions *prometheus.CounterVec
	fills        *prometheus.CounterVec
	volume       *prometheus.CounterVec
	fees         *prometheus.CounterVec
	assets       *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instructions_total",
			Help:      "Instructions processed by kind and result code.",
		}, []string{"kind", "code"}),
		fills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fills_total",
			Help:      "Committed fills by direction.",
		}, []string{"kind"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_volume_lamports_total",
			Help:      "Total price of committed fills in lamports.",
		}, []string{"kind"}),
		fees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_lamports_total",
			Help:      "Fees collected in lamports by type.",
		}, []string{"type"}),
		assets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_assets_total",
			Help:      "Asset units moved by committed fills.",
		}, []string{"kind"}),
	}
	for _, c := range []**prometheus.CounterVec{&r.instructions, &r.fills, &r.volume, &r.fees, &r.assets} {
		if err := reg.Register(*c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return r, nil
}

// Instruction counts one instruction outcome. Successful ones are labelled
// "ok"; engine errors by their code; anything else "internal".
func (r *Recorder) Instruction(kind model.EventKind, err error) {
	code := "ok"
	if err != nil {
		code = "internal"
		if c, ok := ammerr.CodeOf(err); ok {
			code = strconv.FormatUint(uint64(c), 10)
		}
	}
	r.instructions.WithLabelValues(string(kind), code).Inc()
}

// Fill records the volume and fee breakdown of a committed fill.
func (r *Recorder) Fill(event model.Event) {
	kind := string(event.Kind)
	r.fills.WithLabelValues(kind).Inc()
	r.volume.WithLabelValues(kind).Add(float64(event.TotalPrice))
	r.assets.WithLabelValues(kind).Add(float64(event.Quantity))
	r.fees.WithLabelValues("lp").Add(float64(event.LPFee))
	r.fees.WithLabelValues("referral").Add(float64(event.ReferralFee))
	r.fees.WithLabelValues("royalty").Add(float64(event.RoyaltyPaid))
}
