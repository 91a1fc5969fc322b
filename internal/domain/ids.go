package domain

import "github.com/google/uuid"

// BlockId uniquely identifies a block within a Model, across every sheet.
type BlockId uuid.UUID

// NewBlockId generates a fresh, random BlockId.
func NewBlockId() BlockId {
	return BlockId(uuid.New())
}

// ParseBlockId parses a host-supplied string into a BlockId.
func ParseBlockId(s string) (BlockId, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return BlockId{}, err
	}
	return BlockId(u), nil
}

// String renders the id in canonical UUID form.
func (id BlockId) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero value (never assigned).
func (id BlockId) IsZero() bool {
	return id == BlockId{}
}

// SheetId uniquely identifies a sheet within a Model.
type SheetId uuid.UUID

// NewSheetId generates a fresh, random SheetId.
func NewSheetId() SheetId {
	return SheetId(uuid.New())
}

// ParseSheetId parses a host-supplied string into a SheetId.
func ParseSheetId(s string) (SheetId, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SheetId{}, err
	}
	return SheetId(u), nil
}

// String renders the id in canonical UUID form.
func (id SheetId) String() string {
	return uuid.UUID(id).String()
}
