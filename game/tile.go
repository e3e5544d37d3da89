package game

// FullCapture is the capture progress of an uncontested tile.
const FullCapture = 100

// Tile is one grid cell. Its static properties live in the Terrain named by
// Terrain.
type Tile struct {
	Terrain string `json:"terrain"`
	Owner   TeamID `json:"owner"`
	Capture int    `json:"capture"` // 0..FullCapture
	Unit    UnitID `json:"unit"`
}

func (t *Tile) Occupied() bool {
	return t.Unit != NoUnit
}
