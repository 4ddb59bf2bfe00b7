package geometry

// Depth bias per layer, subtracted from window depth before the depth test.
// Positive values pull a layer toward the viewer. These are calibration data;
// config overrides them.
const (
	// ZBiasSky pushes sky past the far plane so it stays behind everything.
	ZBiasSky float32 = -1
	// ZBiasTerrain is the reference layer.
	ZBiasTerrain float32 = 0
	// ZBiasLightmap lifts lightmaps just over the face they light.
	ZBiasLightmap float32 = 0.00002
	// ZBiasDecal lifts decals over lightmaps.
	ZBiasDecal float32 = 0.00004
)

// ZBiases groups the layer offsets so they can be tuned at runtime.
type ZBiases struct {
	Sky      float32
	Terrain  float32
	Lightmap float32
	Decal    float32
}

// DefaultZBiases returns the built-in layer offsets.
func DefaultZBiases() ZBiases {
	return ZBiases{Sky: ZBiasSky, Terrain: ZBiasTerrain, Lightmap: ZBiasLightmap, Decal: ZBiasDecal}
}
