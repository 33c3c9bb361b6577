package domain

// SeedBundle is the bundled, fully denormalized snapshot used to populate an
// empty store on first run. Timestamps inside the records are plain RFC 3339
// strings in the JSON encoding.
type SeedBundle struct {
	ExportedAt string        `json:"exportedAt"`
	Version    int           `json:"version"`
	Items      []CatalogItem `json:"items"`
	Outlets    []Outlet      `json:"outlets"`
}

// Empty reports whether the bundle carries no records at all.
func (b *SeedBundle) Empty() bool {
	return len(b.Items) == 0 && len(b.Outlets) == 0
}
