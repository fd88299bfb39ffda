package forecast

import "time"

// Option applies a configuration option to the Forecaster.
type Option func(*Forecaster)

// WithClock sets the time source used to age open deals.
func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) {
		if now != nil {
			f.now = now
		}
	}
}

// WithAgedAfter sets how old an open deal must be to count as aged.
func WithAgedAfter(d time.Duration) Option {
	return func(f *Forecaster) {
		if d > 0 {
			f.agedAfter = d
		}
	}
}

// WithDiscounts sets how strongly the aged ratio reduces confidence and the
// expected deal count. Values outside [0,1] are ignored.
func WithDiscounts(confidence, deals float64) Option {
	return func(f *Forecaster) {
		if confidence >= 0 && confidence <= 1 {
			f.confidenceDiscount = confidence
		}
		if deals >= 0 && deals <= 1 {
			f.dealDiscount = deals
		}
	}
}
