package building

// Building represents a managed residential building. The apartment and
// resident counts are denormalized summaries maintained at write time, not
// recomputed from the apartment table.
type Building struct {
	ID              int64
	Address         string
	Entrance        string
	TotalApartments int
	TotalResidents  int
}

// Apartment belongs to exactly one building. UserID links the apartment to
// its resident account when one has been assigned.
type Apartment struct {
	ID         int64
	BuildingID int64
	Number     string
	Floor      int
	Type       string
	Residents  int
	UserID     *int64
}
