// Package soft is a headless icon host built on gg.
//
// A Host plays the camera, the stage and the capturer of an
// iconstage.Rig. It draws the staged object as flat-shaded triangles with
// the gg software rasterizer, so icons can be produced without a window
// or a GPU:
//
//	host := soft.NewHost(lib)
//	st, _ := iconstage.New(lib, host.Rig())
//	for !st.Idle() {
//	    st.Update()
//	    host.RenderFrame(st)
//	}
//
// Transparent pixels are counted asynchronously by a Counter. The default
// counts on the CPU; package capture/gpucount counts on the GPU.
package soft
