package health

// IndexInspector checks the index of each database.
type IndexInspector interface {
	Databases() ([]string, error)
	HasIndex(database, language string) (indexed bool, err error)
}
