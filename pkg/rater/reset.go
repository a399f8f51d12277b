package rater

// ResetGate requires two sequential confirmations before a destructive
// reset. Any other operation on the session disarms it.
type ResetGate struct {
	armed bool
}

func (g *ResetGate) Arm() {
	g.armed = true
}

func (g *ResetGate) Disarm() {
	g.armed = false
}

func (g *ResetGate) Armed() bool {
	return g.armed
}

// Confirm consumes an armed gate. It returns ErrResetNotArmed when Arm was
// not the previous step.
func (g *ResetGate) Confirm() error {
	if !g.armed {
		return ErrResetNotArmed
	}
	g.armed = false
	return nil
}
