package collision

import (
	"slices"

	"github.com/zeusync/barrage/internal/core/config"
)

// ObjectLayer groups world colliders; BulletLayer groups bullets. A
// bullet on layer 0 never collides.
type (
	ObjectLayer uint16
	BulletLayer uint16
)

// LayerTable is the static bullet layer to object layer mapping.
type LayerTable struct {
	reach   map[BulletLayer][]ObjectLayer
	objects []ObjectLayer
}

func NewLayerTable(mappings []config.LayerMapping) *LayerTable {
	t := &LayerTable{reach: make(map[BulletLayer][]ObjectLayer, len(mappings))}
	for _, m := range mappings {
		if m.Bullet == 0 {
			continue
		}
		layers := make([]ObjectLayer, 0, len(m.Objects))
		for _, o := range m.Objects {
			layer := ObjectLayer(o)
			if !slices.Contains(layers, layer) {
				layers = append(layers, layer)
			}
			if !slices.Contains(t.objects, layer) {
				t.objects = append(t.objects, layer)
			}
		}
		t.reach[BulletLayer(m.Bullet)] = layers
	}
	slices.Sort(t.objects)
	return t
}

// Reach lists the object layers bullets on b are tested against.
func (t *LayerTable) Reach(b BulletLayer) []ObjectLayer {
	return t.reach[b]
}

// Objects lists every object layer some bullet layer can reach.
func (t *LayerTable) Objects() []ObjectLayer {
	return t.objects
}

func (t *LayerTable) Known(o ObjectLayer) bool {
	_, found := slices.BinarySearch(t.objects, o)
	return found
}
