package gpucount

// workgroupSize is the edge of the square workgroup. Images must be a
// multiple of it in both dimensions.
const workgroupSize = 8

// TileSize is the edge, in pixels, that counted image sizes must be a
// multiple of.
const TileSize = workgroupSize

// countShaderWGSL counts pixels whose alpha byte is zero. Pixels are
// packed RGBA8, so alpha is the high byte of each little-endian word.
const countShaderWGSL = `
struct Params {
    width: u32,
    height: u32,
    _pad0: u32,
    _pad1: u32,
}

struct Result {
    transparent: atomic<u32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> pixels: array<u32>;
@group(0) @binding(2) var<storage, read_write> result: Result;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    if (id.x >= params.width || id.y >= params.height) {
        return;
    }
    let px = pixels[id.y * params.width + id.x];
    if ((px >> 24u) == 0u) {
        atomicAdd(&result.transparent, 1u);
    }
}
`
