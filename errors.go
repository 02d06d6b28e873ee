package iconstage

import "errors"

var (
	// ErrStageOccupied is returned by Scene.Place while another object is
	// on the stage.
	ErrStageOccupied = errors.New("iconstage: stage already occupied")

	// ErrAlreadyStarted is returned by Start on a running stage.
	ErrAlreadyStarted = errors.New("iconstage: already started")

	// ErrNilRig is returned by New when a host collaborator is missing.
	ErrNilRig = errors.New("iconstage: rig is incomplete")

	// ErrNilSampler is returned by New without a mesh sampler.
	ErrNilSampler = errors.New("iconstage: nil mesh sampler")

	// ErrTargetGone marks a request whose object was destroyed or hidden.
	ErrTargetGone = errors.New("iconstage: target object is gone")
)
