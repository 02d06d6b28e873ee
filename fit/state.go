package fit

// State is the position of a Job in the fitting pipeline.
type State uint8

const (
	// StateNone is a job with no sampled vertices.
	StateNone State = iota
	// StateVertices holds the raw world-space cloud.
	StateVertices
	// StateCentered has the cloud centered on the origin.
	StateCentered
	// StateRotated has the display rotation applied.
	StateRotated
	// StateCameraValues has camera offset and field of view computed.
	StateCameraValues
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateVertices:
		return "Vertices"
	case StateCentered:
		return "Centered"
	case StateRotated:
		return "Rotated"
	case StateCameraValues:
		return "CameraValues"
	default:
		return "Unknown"
	}
}
