package types

import "fmt"

//msgp:tuple Effects

// Effects is what settling one transaction actually did to each balance. Only the
// delta matching the transaction target may be non-zero. A zero Effects for a
// transaction whose Delta is non-zero means it cleared for nothing.
type Effects struct {
	AddressDelta BalanceDelta `json:"address_delta"`
	ObjectDelta  BalanceDelta `json:"object_delta"`
}

func (e Effects) IsZero() bool {
	return e.AddressDelta.IsZero() && e.ObjectDelta.IsZero()
}

// DeltaFor returns the delta recorded for target.
func (e Effects) DeltaFor(target Target) BalanceDelta {
	if target == TargetObject {
		return e.ObjectDelta
	}
	return e.AddressDelta
}

func (e Effects) String() string {
	return fmt.Sprintf("Effects{address:%s,object:%s}", e.AddressDelta, e.ObjectDelta)
}
