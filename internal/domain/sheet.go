package domain

// Extents is the canvas size of a sheet; cosmetic to the core.
type Extents struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sheet is a 2-D collection of blocks and wires. Sheets compose via
// subsystem blocks whose parameters embed their inner sheets.
type Sheet struct {
	ID      SheetId  `json:"id"`
	Name    string   `json:"name"`
	Blocks  []Block  `json:"blocks"`
	Wires   []Wire   `json:"connections"`
	Extents Extents  `json:"extents"`
}
