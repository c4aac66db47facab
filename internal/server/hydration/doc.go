// Package hydration holds the pure rules of intake tracking: goal progress,
// streaks, gap-filled window series and report assembly. Nothing here
// touches storage; callers pass entries already loaded for one user.
//
// All dates are calendar days in the normal form produced by timex.DateOf.
package hydration
