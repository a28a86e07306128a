package domain

// Storage block. Usage counts jobs assigned to the yard whose final leg is not complete.
type Yard struct {
	ID    string
	Entry Coordinate
	Usage int
}
