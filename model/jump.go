package model

import "gonum.org/v1/gonum/floats"

// JumpPoint is one entry of a jump-method profile: the candidate cluster
// count, the transformed distortion at that count and the jump value
// (difference of adjacent transformed distortions).
type JumpPoint struct {
	K          int
	Distortion float64
	Jump       float64
}

// JumpProfile is the ordered sequence of jump points for K = 1..KMax,
// together with the transformation power Y the distortions were raised to.
type JumpProfile struct {
	Y      float64
	Points []JumpPoint
}

// Jumps returns the jump-value sequence.
func (p *JumpProfile) Jumps() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.Jump
	}
	return out
}

// OptimalK returns the 1-indexed K with the largest jump value, or 0 for an
// empty profile.
func (p *JumpProfile) OptimalK() int {
	if len(p.Points) == 0 {
		return 0
	}
	return floats.MaxIdx(p.Jumps()) + 1
}
