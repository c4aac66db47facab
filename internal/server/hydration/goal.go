package hydration

// Progress returns amount as a percentage of goal, capped at 100.
// A non-positive goal yields 0.
func Progress(amount, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return min(100, float64(amount)/float64(goal)*100)
}

// MetGoal reports whether amount reaches goal.
func MetGoal(amount, goal int) bool {
	return amount >= goal
}
