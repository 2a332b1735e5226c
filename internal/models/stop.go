package models

// Stop is a delivery address that was resolved to coordinates.
// IDs start at 1 and follow the cleaned input order.
type Stop struct {
	ID      int     `json:"id"`      // ID is the dense, sequential stop number.
	Address string  `json:"address"` // Address is the normalized input line.
	Lat     float64 `json:"lat"`     // Lat is the resolved latitude.
	Lng     float64 `json:"lng"`     // Lng is the resolved longitude.
}
