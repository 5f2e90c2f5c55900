package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Terrain is a rectangular heightmap over the playfield. HeightAt samples
// with bilinear interpolation; Clamp keeps a position inside world bounds
// and snaps its height to the ground.
//
// 地形在玩家移動和怪物重生兩處都要做 clamp（兩邊行為一致）。
type Terrain struct {
	OriginX  float64     `yaml:"origin_x"`
	OriginZ  float64     `yaml:"origin_z"`
	CellSize float64     `yaml:"cell_size"`
	Heights  [][]float64 `yaml:"heights"` // rows of Z, columns of X
}

// Width returns the world-space extent along X.
func (t *Terrain) Width() float64 {
	if len(t.Heights) == 0 {
		return 0
	}
	return float64(len(t.Heights[0])-1) * t.CellSize
}

// Depth returns the world-space extent along Z.
func (t *Terrain) Depth() float64 {
	return float64(len(t.Heights)-1) * t.CellSize
}

// HeightAt samples the ground height at world (x, z) with bilinear
// interpolation. Out-of-bounds coordinates are clamped to the edges.
func (t *Terrain) HeightAt(x, z float64) float64 {
	if len(t.Heights) == 0 || len(t.Heights[0]) == 0 {
		return 0
	}
	fx := (x - t.OriginX) / t.CellSize
	fz := (z - t.OriginZ) / t.CellSize

	maxX := float64(len(t.Heights[0]) - 1)
	maxZ := float64(len(t.Heights) - 1)
	fx = clampF(fx, 0, maxX)
	fz = clampF(fz, 0, maxZ)

	x0, z0 := int(fx), int(fz)
	x1, z1 := x0+1, z0+1
	if x1 > int(maxX) {
		x1 = x0
	}
	if z1 > int(maxZ) {
		z1 = z0
	}
	tx := fx - float64(x0)
	tz := fz - float64(z0)

	h00 := t.Heights[z0][x0]
	h10 := t.Heights[z0][x1]
	h01 := t.Heights[z1][x0]
	h11 := t.Heights[z1][x1]

	top := h00 + (h10-h00)*tx
	bot := h01 + (h11-h01)*tx
	return top + (bot-top)*tz
}

// Clamp constrains (x, z) to the terrain bounds and returns the clamped
// coordinates plus the ground height there.
func (t *Terrain) Clamp(x, z float64) (cx, cy, cz float64) {
	cx = clampF(x, t.OriginX, t.OriginX+t.Width())
	cz = clampF(z, t.OriginZ, t.OriginZ+t.Depth())
	cy = t.HeightAt(cx, cz)
	return cx, cy, cz
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LoadTerrain loads the heightmap from a YAML file.
func LoadTerrain(path string) (*Terrain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terrain: %w", err)
	}
	t := &Terrain{}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("parse terrain: %w", err)
	}
	if t.CellSize <= 0 {
		return nil, fmt.Errorf("terrain: cell_size must be positive")
	}
	if len(t.Heights) < 2 || len(t.Heights[0]) < 2 {
		return nil, fmt.Errorf("terrain: heightmap needs at least 2x2 samples")
	}
	for i, row := range t.Heights {
		if len(row) != len(t.Heights[0]) {
			return nil, fmt.Errorf("terrain: row %d has %d samples, want %d", i, len(row), len(t.Heights[0]))
		}
	}
	return t, nil
}
