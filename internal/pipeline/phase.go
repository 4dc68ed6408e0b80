package pipeline

import "fmt"

// Phase identifies one state of the generation pipeline.
type Phase string

const (
	PhaseBrief        Phase = "brief"
	PhaseArchitecture Phase = "architecture"
	PhaseBeatSheet    Phase = "beatsheet"
	PhaseDraftV0      Phase = "draft_v0"
	PhaseCohesion     Phase = "cohesion"
	PhaseRhythm       Phase = "rhythm"
	PhaseChannel      Phase = "channel"
	PhaseFinalPackage Phase = "final_package"
	PhaseDone         Phase = "done"
)

// phaseOrder is the transition table. The pipeline is strictly linear; the
// only conditional is inside the beatsheet prompt (email campaign shape), not
// in the sequencing.
var phaseOrder = []Phase{
	PhaseBrief,
	PhaseArchitecture,
	PhaseBeatSheet,
	PhaseDraftV0,
	PhaseCohesion,
	PhaseRhythm,
	PhaseChannel,
	PhaseFinalPackage,
	PhaseDone,
}

// Phases returns the execution order, excluding the terminal done state.
func Phases() []Phase {
	return append([]Phase(nil), phaseOrder[:len(phaseOrder)-1]...)
}

// Next returns the phase following p.
func (p Phase) Next() (Phase, error) {
	for i, ph := range phaseOrder {
		if ph == p {
			if i == len(phaseOrder)-1 {
				return "", fmt.Errorf("phase %q is terminal", p)
			}
			return phaseOrder[i+1], nil
		}
	}
	return "", fmt.Errorf("unknown phase %q", p)
}

// draftFor maps draft-producing phases to their version number.
var draftVersions = map[Phase]int{
	PhaseDraftV0:  0,
	PhaseCohesion: 1,
	PhaseRhythm:   2,
	PhaseChannel:  3,
}
