// Package orchestration runs one or several multiplication strategies
// concurrently on the same operands and cross-checks their products. It
// decouples the engine from presentation via the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
