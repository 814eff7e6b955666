package circuitbreaker

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// Returned by Allow when the breaker state cannot be read and FailOpen is off.
	ErrBreakerUnavailable = errors.New("circuit breaker state unavailable")
)

const (
	defaultFailureThreshold = 5
	defaultFailWindow       = 10
	defaultOpenCooldown     = 30
	defaultHalfOpenLease    = 5
	defaultFailOpen         = true
	defaultPrefix           = "cb:"
)

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

var stateName = map[State]string{
	Closed:   "CLOSED",
	HalfOpen: "HALF_OPEN",
	Open:     "OPEN",
}

func (s State) String() string {
	return stateName[s]
}

type Breaker interface {
	Allow(ctx context.Context) error
	OnSuccess(ctx context.Context)
	OnFailure(ctx context.Context)
}

type Options struct {
	// Number of failures before entering open state.
	FailureThreshold int
	// Time between failures to count as an outage.
	FailWindow time.Duration
	// How long to stay in open state before triggering half-open state.
	OpenCoolDown time.Duration
	// Time lease to allow only one pod instance at a time to test whether the circuit can be closed.
	HalfOpenLease time.Duration
	// If Redis is unreachable and the state is unknown, this decides what Allow does while the breaker is blind.
	// TRUE: allows requests to proceed without circuit breaker participating
	// FALSE: blocks requests with ErrBreakerUnavailable
	FailOpen bool
	// Key prefix to prevent name clashing.
	Prefix string
}

func DefaultOptions() Options {
	return Options{
		FailureThreshold: defaultFailureThreshold,
		FailWindow:       defaultFailWindow * time.Second,
		OpenCoolDown:     defaultOpenCooldown * time.Second,
		HalfOpenLease:    defaultHalfOpenLease * time.Second,
		FailOpen:         defaultFailOpen,
		Prefix:           defaultPrefix,
	}
}

// withDefaults fills unset fields. Options without a threshold are treated
// as entirely unset.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.FailureThreshold <= 0 {
		return def
	}
	if o.FailWindow <= 0 {
		o.FailWindow = def.FailWindow
	}
	if o.OpenCoolDown <= 0 {
		o.OpenCoolDown = def.OpenCoolDown
	}
	if o.HalfOpenLease <= 0 {
		o.HalfOpenLease = def.HalfOpenLease
	}
	if o.Prefix == "" {
		o.Prefix = def.Prefix
	}
	return o
}
