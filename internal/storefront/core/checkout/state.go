package checkout

// State is the lifecycle state of one checkout attempt.
type State string

const (
	StateDraft           State = "DRAFT"
	StateSubmitting      State = "SUBMITTING"
	StateConfirmed       State = "CONFIRMED"
	StateConflict        State = "CONFLICT"
	StateResolving       State = "RESOLVING"
	StateAcceptedReduced State = "ACCEPTED_REDUCED"
	StateAborted         State = "ABORTED"
)

// Terminal reports whether the attempt has finished.
func (s State) Terminal() bool {
	switch s {
	case StateConfirmed, StateAcceptedReduced, StateAborted:
		return true
	}
	return false
}

// InFlight reports whether a request is outstanding.
func (s State) InFlight() bool {
	return s == StateSubmitting || s == StateResolving
}

// Ready reports whether a new submission may start.
func (s State) Ready() bool {
	return s == StateDraft || s.Terminal()
}

// Succeeded reports whether an order was placed.
func (s State) Succeeded() bool {
	return s == StateConfirmed || s == StateAcceptedReduced
}
