// Package validator checks request payloads with explicit, composable rules.
//
// A Rule pairs a check with the error reported when it fails. Apply runs
// every rule and returns ValidationErrors listing each failure by field, so
// clients can show all problems at once.
//
//	err := validator.Apply(
//	    validator.Required("email", req.Email),
//	    validator.Email("email", req.Email),
//	    validator.Between("period", req.Period, 30, 1800),
//	)
package validator
