// Package validate checks an assembled binding graph for user errors:
// missing bindings, duplicates, illegal cycles, scope mismatches, visibility
// violations and nullability conflicts.
//
// Each validator is an independent read-only pass reporting diagnostics
// through a Reporter. Validators never mutate the graph and never stop at
// the first problem; all diagnostics for one component surface together.
package validate
