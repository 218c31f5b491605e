// Package pick resolves pointer positions to map features.
//
// A [Viewport] maps screen pixels onto map coordinates (linear, north-up, no
// reprojection). A [Canvas] stacks layers the way the host draws them and
// answers "which features are under this pixel" through the [Query]
// interface, restricted by a [LayerFilter]. A [Picker] reduces that answer to
// the single topmost eligible feature, or none.
//
// The eligibility used by the map viewer is [StatsLayers]: visible layers
// whose metadata marks them as zonal statistics. Hits are always returned
// topmost first, so the first hit is the one the user sees.
package pick
