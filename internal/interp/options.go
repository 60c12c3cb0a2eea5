package interp

// Option configures an Evaluator.
type Option func(*Options)

// Options holds the evaluator's externally significant configuration.
type Options struct {
	echoMode   bool
	warnOnExit bool
	shotIsLast bool
	seed       int64
}

func defaultOptions() Options {
	return Options{echoMode: true, warnOnExit: true, shotIsLast: true}
}

// WithEchoMode enables or disables stdout output from echo statements.
func WithEchoMode(on bool) Option {
	return func(o *Options) { o.echoMode = on }
}

// WithWarnOnExit enables or disables end-of-run warnings about
// unmeasured qubits.
func WithWarnOnExit(on bool) Option {
	return func(o *Options) { o.warnOnExit = on }
}

// WithShotIsLast marks whether the shot about to run is the final one
// in the run, influencing whether trailing warnings and QASM capture
// happen for it.
func WithShotIsLast(last bool) Option {
	return func(o *Options) { o.shotIsLast = last }
}

// WithSeed fixes the base random seed a shot's Evaluator derives its
// independent stream from (seed + shot index).
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}
