package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the document store
	DefaultDatabasePath = "./pagekeeper.db"

	// DefaultFetchStorageDir is where fetched page HTML is archived
	DefaultFetchStorageDir = "./pages"

	DefaultUserAgent = "pagekeeper/1.0 (+https://github.com/mrlokans/pagekeeper)"
)
