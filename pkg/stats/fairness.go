package stats

import "sort"

// VisitorWorkload is one visitor's share of a solved plan, used as the
// input sample for the fairness metrics below.
type VisitorWorkload struct {
	VisitorID  string
	VisitCount int
	TravelTime int // seconds, open-route convention -- see model.Route
	BusyTime   int // seconds, sum of visit durations
}

// FairnessMetrics describes how evenly routed work is spread across
// visitors. Gini coefficients are 0 (perfectly even) to 1 (maximally
// uneven); both are computed over all pairs of the (unsorted) sample,
// via the mean-absolute-difference formulation rather than the discrete
// Lorenz-curve trapezoid, since the visitor count here is always small.
type FairnessMetrics struct {
	VisitorCount      int     `json:"visitor_count"`
	WorkloadGini      float64 `json:"workload_gini"`       // over BusyTime+TravelTime per visitor
	VisitCountGini     float64 `json:"visit_count_gini"`
	MostLoadedVisitor  string  `json:"most_loaded_visitor,omitempty"`
	LeastLoadedVisitor string  `json:"least_loaded_visitor,omitempty"`
}

// Fairness computes FairnessMetrics over a set of per-visitor workloads.
// An empty or single-visitor input is perfectly fair by definition (Gini
// is undefined for n<2 and reported as 0).
func Fairness(workloads []VisitorWorkload) FairnessMetrics {
	m := FairnessMetrics{VisitorCount: len(workloads)}
	if len(workloads) == 0 {
		return m
	}

	totals := make([]float64, len(workloads))
	counts := make([]float64, len(workloads))
	for i, w := range workloads {
		totals[i] = float64(w.BusyTime + w.TravelTime)
		counts[i] = float64(w.VisitCount)
	}

	m.WorkloadGini = gini(totals)
	m.VisitCountGini = gini(counts)

	sorted := append([]VisitorWorkload(nil), workloads...)
	sort.Slice(sorted, func(i, j int) bool {
		return workloadTotal(sorted[i]) < workloadTotal(sorted[j])
	})
	m.LeastLoadedVisitor = sorted[0].VisitorID
	m.MostLoadedVisitor = sorted[len(sorted)-1].VisitorID

	return m
}

func workloadTotal(w VisitorWorkload) int {
	return w.BusyTime + w.TravelTime
}

// gini computes the Gini coefficient of a non-negative sample using the
// mean absolute difference formulation: the average of |x_i - x_j| over
// all pairs, divided by twice the mean. Returns 0 for n<2 or an all-zero
// sample (no workload assigned to anyone is trivially "fair").
func gini(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return 0
	}
	mean := sum / float64(n)

	var absDiffSum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := values[i] - values[j]
			if d < 0 {
				d = -d
			}
			absDiffSum += d
		}
	}

	return absDiffSum / (2 * float64(n) * float64(n) * mean)
}
