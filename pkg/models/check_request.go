package models

import "time"

// BulkCheckRequest carries a checker's proposed update for a NON-SN line.
// Snapshot is the load time of the row the checker was looking at; it is
// threaded explicitly through every mutation for conflict detection.
type BulkCheckRequest struct {
	Qty        int        `json:"qty"`
	Allocation Allocation `json:"allocation"`
	Note       string     `json:"note"`
	Snapshot   time.Time  `json:"snapshot" binding:"required"`
}

// SerialCheckRequest carries the full proposed serial set for an SN line.
type SerialCheckRequest struct {
	Serials    []string   `json:"serials"`
	Allocation Allocation `json:"allocation"`
	Note       string     `json:"note"`
	Snapshot   time.Time  `json:"snapshot" binding:"required"`
}

type AddSerialRequest struct {
	Serial   string    `json:"serial" binding:"required"`
	Snapshot time.Time `json:"snapshot" binding:"required"`
}

// BatchSerialRequest is a newline-delimited scan block from a barcode gun.
type BatchSerialRequest struct {
	Block    string    `json:"block" binding:"required"`
	Snapshot time.Time `json:"snapshot" binding:"required"`
}
