package model

type RouteStat struct {
	Origin      string
	Destination string
	Completed   int64
}

type PlatformStats struct {
	ActiveListings    int64
	CompletedListings int64
	Accounts          int64
	PopularRoutes     []RouteStat
}
