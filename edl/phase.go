package edl

//go:generate go tool stringer -type=Phase -trimprefix=Phase

// Phase is the step of the frame the renderer is currently in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparingMaterials
	PhaseCapturePass
	PhaseScreenPass
	PhaseCompositing
)
