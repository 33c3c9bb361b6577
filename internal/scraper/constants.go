package scraper

// Site paths.
const (
	productPathFmt = "/tuotteet/%s"
	outletListPath = "/myymalat"
	tagSearchFmt   = "/haku?tags=%s"
)

// Extraction bounds.
const (
	// maxSectionChars caps each captured free-text section so a runaway
	// selector can't balloon memory or storage.
	maxSectionChars = 800

	// maxLoadMoreAttempts caps the lazy-loading loop on the outlet listing.
	maxLoadMoreAttempts = 20

	// outletFallbackSample bounds how many individual outlet pages are
	// visited when the primary listing extraction yields nothing.
	outletFallbackSample = 10

	// sitePageCap is the site's own search page size; requesting more is
	// pointless.
	sitePageCap = 60
)
