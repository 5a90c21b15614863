// Package transform defines the transform collaborator contract and the
// Chain that runs the matched rules of a file as one ordered pipeline.
//
// Within a rule, the primary output of one transform is the input of the
// next. Across rules the same piping continues in phase order, so a pre rule
// sees the raw file and a post rule sees what the normal rules produced.
// Named outputs and dependencies accumulate over the whole chain.
//
// A failing or panicking transform aborts the chain for that file only; the
// failure is recorded as an errors.TransformError on the result.
package transform
