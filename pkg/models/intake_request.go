package models

// AdHocIntakeRequest is an undocumented receipt: goods that arrived with no
// corresponding manifest line.
type AdHocIntakeRequest struct {
	Brand      string       `json:"brand" binding:"required"`
	SKU        string       `json:"sku" binding:"required"`
	Category   ItemCategory `json:"category" binding:"required"`
	Qty        int          `json:"qty"`
	Serials    []string     `json:"serials"`
	Allocation Allocation   `json:"allocation"`
	Note       string       `json:"note" binding:"required"`
}
