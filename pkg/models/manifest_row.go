package models

// ManifestRow is one normalized row of an uploaded GR/PO master file.
// Missing values are already defaulted by the manifest parser: quantity 0,
// allocation STOCK, category NON-SN.
type ManifestRow struct {
	SKU         string
	ItemName    string
	ExpectedQty int
	Category    ItemCategory
	Allocation  Allocation
	Note        string
}
