package compute

// computeShaderSource iterates every cell of the in buffers by dt steps into
// the out buffers. Values are kept in double precision so deep zooms match
// the CPU evaluator.
const computeShaderSource = `#version 430
layout(local_size_x = 16, local_size_y = 16) in;

layout(std430, binding = 0) readonly buffer InValue { dvec2 in_value[]; };
layout(std430, binding = 1) readonly buffer InLife { uint in_life[]; };
layout(std430, binding = 2) writeonly buffer OutValue { dvec2 out_value[]; };
layout(std430, binding = 3) writeonly buffer OutLife { uint out_life[]; };

uniform dvec2 viewport_bottom_left;
uniform double viewport_size;
uniform uint resolution;
uniform uint dt;

void main() {
    uvec2 cell = gl_GlobalInvocationID.xy;
    if (cell.x >= resolution || cell.y >= resolution) {
        return;
    }
    uint idx = cell.y * resolution + cell.x;
    double step = viewport_size / double(resolution);
    dvec2 c = viewport_bottom_left + dvec2(cell) * step;

    dvec2 z = in_value[idx];
    uint life = in_life[idx];
    for (uint n = 0u; n < dt; ++n) {
        if (dot(z, z) > 4.0lf) {
            break;
        }
        z = dvec2(z.x * z.x - z.y * z.y, 2.0lf * z.x * z.y) + c;
        ++life;
    }
    out_value[idx] = z;
    out_life[idx] = life;
}
` + "\x00"

// workGroupSize matches local_size_x and local_size_y above.
const workGroupSize = 16
