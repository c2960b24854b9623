package httptransport

import "expvar"

var (
	metricSubmitTotal  = expvar.NewInt("pick_submit_total")
	metricSubmitErrors = expvar.NewInt("pick_submit_errors_total")

	metricResolveTotal  = expvar.NewInt("period_resolve_total")
	metricResolveErrors = expvar.NewInt("period_resolve_errors_total")

	metricClaimTotal  = expvar.NewInt("prize_claim_total")
	metricClaimErrors = expvar.NewInt("prize_claim_errors_total")

	metricSweptUnitsTotal = expvar.NewInt("swept_units_total")
)
