// Package iconstage renders 2D icons of 3D objects.
//
// # Overview
//
// A Stage takes icon requests for objects, computes off the frame loop
// how each object has to be posed and framed to fill a square image, and
// hands the result back to the host renderer one object per frame. Once
// the GPU finished a shot, the image is classified: a mostly transparent
// capture is rejected and the request's fallback icon is shown instead.
//
// # Quick Start
//
//	st, err := iconstage.New(sampler, iconstage.Rig{
//	    Camera:   cam,
//	    Scene:    scene,
//	    Capturer: capturer,
//	}, iconstage.WithIconSink(sink))
//	if err != nil {
//	    return err
//	}
//	if err := st.Start(ctx); err != nil {
//	    return err
//	}
//	defer st.Stop()
//
//	st.EnqueueSpawned(obj)
//
//	// once per frame, on the frame loop
//	st.Update()
//	// from the host's render hooks
//	st.OnRenderBegin(cam)
//	st.OnRenderEnd(cam)
//
// # Pipeline
//
// Requests wait in a delay queue until their ready frame, then go to a
// single compute worker. The worker keeps at most one request per Item in
// flight; later requests for the same item queue behind it as alternates
// and are promoted one at a time when the in-flight one finishes or is
// retried. Fitting is done by package fit.
//
// Each Update the frame loop finalizes at most one capture, strictly in
// submission order, admits due requests and aims the camera at the next
// fitted job. Objects that vanished along the way are retried, never
// interrupted.
//
// # Host
//
// The host supplies a MeshSampler and a Rig. Package capture/soft is a
// headless host built on gg; package capture/gpucount counts transparent
// pixels on the GPU.
//
// # Logging
//
// The package is silent by default. Use SetLogger to route its log output,
// and that of its sub-packages, to a slog.Logger.
package iconstage
