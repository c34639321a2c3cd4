package risk

// Analyze builds the risk report for a series of session returns.
// NaN returns are ignored. levels defaults to DefaultConfidenceLevels.
func Analyze(returns []float64, levels ...float64) Report {
	if len(levels) == 0 {
		levels = DefaultConfidenceLevels
	}

	sessions := newSessionReturns(returns)
	report := Report{
		Sessions:   len(sessions),
		Historical: make([]VaRResult, 0, len(levels)),
		Parametric: make([]VaRResult, 0, len(levels)),
	}
	if len(sessions) == 0 {
		return report
	}

	report.Mean, report.StdDev = sessions.moments()
	report.Worst, report.Best = sessions[0], sessions[len(sessions)-1]
	for _, r := range sessions {
		if r != 0 {
			report.ActiveSessions++
		}
	}

	for _, c := range levels {
		report.Historical = append(report.Historical, sessions.historical(c))
		report.Parametric = append(report.Parametric, parametric(report.Mean, report.StdDev, c))
	}

	return report
}
