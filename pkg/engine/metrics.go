package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workstream_engine_ops_total",
	Help: "Engine operations by name and result.",
}, []string{"op", "result"})

func countOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	opsTotal.WithLabelValues(op, result).Inc()
}
