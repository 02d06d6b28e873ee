package fit

import "fmt"

// Sampled is a job that holds raw vertices.
type Sampled struct{ job *Job }

// Centered is a job whose cloud is centered on the origin.
type Centered struct{ job *Job }

// Rotated is a job with its display rotation applied.
type Rotated struct{ job *Job }

// Framed is a job with camera values computed.
type Framed struct{ job *Job }

// Job returns the finished job.
func (s Framed) Job() *Job { return s.job }

// Begin starts the typed pipeline. An empty job fails with ErrNoRenders.
func (f *Fitter) Begin(job *Job) (Sampled, error) {
	switch job.State {
	case StateVertices:
		return Sampled{job}, nil
	case StateNone:
		return Sampled{}, ErrNoRenders
	default:
		return Sampled{}, fmt.Errorf("%w: job is %s", ErrStaleStage, job.State)
	}
}

// Center runs CenterOnPivot.
func (f *Fitter) Center(s Sampled) (Centered, error) {
	if err := expect(s.job, StateVertices); err != nil {
		return Centered{}, err
	}
	if err := f.center(s.job); err != nil {
		return Centered{}, err
	}
	return Centered{s.job}, nil
}

// Rotate runs FindOptimalRotation.
func (f *Fitter) Rotate(c Centered) (Rotated, error) {
	if err := expect(c.job, StateCentered); err != nil {
		return Rotated{}, err
	}
	if _, _, err := f.rotate(c.job); err != nil {
		return Rotated{}, err
	}
	return Rotated{c.job}, nil
}

// Frame runs ComputeCameraFraming.
func (f *Fitter) Frame(r Rotated) (Framed, error) {
	if err := expect(r.job, StateRotated); err != nil {
		return Framed{}, err
	}
	if err := f.frame(r.job); err != nil {
		return Framed{}, err
	}
	return Framed{r.job}, nil
}

// Run takes a job from StateVertices to StateCameraValues.
func (f *Fitter) Run(job *Job) (Framed, error) {
	s, err := f.Begin(job)
	if err != nil {
		return Framed{}, err
	}
	c, err := f.Center(s)
	if err != nil {
		return Framed{}, err
	}
	slogger().Debug("fit: centered", "item", job.Label, "offset", job.Position, "rotation", job.Rotation)
	r, err := f.Rotate(c)
	if err != nil {
		return Framed{}, err
	}
	slogger().Debug("fit: rotated", "item", job.Label, "rotation", job.Rotation)
	fr, err := f.Frame(r)
	if err != nil {
		return Framed{}, err
	}
	slogger().Debug("fit: framed", "item", job.Label,
		"camera_offset", job.CameraOffset,
		"orthographic", job.Camera.Orthographic,
		"fov", job.CameraFOV)
	return fr, nil
}

func expect(job *Job, want State) error {
	if job == nil {
		return fmt.Errorf("%w: no job", ErrStaleStage)
	}
	if job.State != want {
		return fmt.Errorf("%w: want %s, job is %s", ErrStaleStage, want, job.State)
	}
	return nil
}
