package catalog

const (
	// maxOutletListLimit bounds an outlet listing response.
	maxOutletListLimit = 100

	// maxSyncRunListLimit bounds the sync history listing.
	maxSyncRunListLimit = 50
)
