// Package fit computes how an object is posed and framed for a square
// thumbnail.
//
// A [Job] carries a world-space vertex cloud through four states:
//
//	StateVertices -> StateCentered -> StateRotated -> StateCameraValues
//
// Each stage mutates the cloud in place and records its contribution:
//
//   - [Fitter.CenterOnPivot] moves the bounding-box center to the origin.
//   - [Fitter.FindOptimalRotation] picks a display rotation from the shape
//     of the bounds (a fixed decision tree, not a search) and re-centers.
//   - [Fitter.ComputeCameraFraming] moves the cloud in front of the camera
//     and solves the field of view (or orthographic size) so the object
//     fills the image minus the configured pixel margin.
//
// Calling a stage on a job in the wrong state logs a warning and returns
// a neutral result without touching the job. The typed pipeline
// ([Fitter.Begin], [Fitter.Center], [Fitter.Rotate], [Fitter.Frame]) makes
// the order a compile-time property instead.
//
// Coordinates follow a left-handed, Y-up convention: right is +X, up is +Y
// and the camera looks along +Z.
package fit
