package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalAssignments  int
	RetriedCount      int
	ForcedCount       int
	BundleCount       int
	MiscostedCount    int
	MeanCost          float64
	DeferralsByReason map[string]int
	UnitDistribution  map[int]int // unit ID → count of trips committed
	// MaxActiveConveyors is the largest active conveyor-station count observed
	// after a gated (non-forced) commit.
	MaxActiveConveyors int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DeferralsByReason: make(map[string]int),
		UnitDistribution:  make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalAssignments = len(st.Assignments)
	totalCost := 0.0
	costed := 0
	for _, a := range st.Assignments {
		summary.UnitDistribution[a.UnitID]++
		if a.Retried {
			summary.RetriedCount++
		}
		if a.Partner != "" {
			summary.BundleCount++
		}
		if a.Miscosted {
			summary.MiscostedCount++
		}
		if a.Forced {
			summary.ForcedCount++
			continue
		}
		totalCost += a.Cost
		costed++
		if a.ActiveConveyors > summary.MaxActiveConveyors {
			summary.MaxActiveConveyors = a.ActiveConveyors
		}
	}
	if costed > 0 {
		summary.MeanCost = totalCost / float64(costed)
	}

	for _, d := range st.Deferrals {
		summary.DeferralsByReason[d.Reason]++
	}
	return summary
}
