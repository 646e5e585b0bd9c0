package domain

// UserParameters is the reference data shown on the user management page.
type UserParameters struct {
	Roles       []RemoteRole
	Functions   []string
	Hierarchies []Seats
	Users       []User
}

// RemoteRole is a role persisted by the remote API.
type RemoteRole struct {
	ID   int
	Name string
}

// Seats reports allocation for one hierarchy level.
type Seats struct {
	Name      string
	Total     int
	Occupied  int
	Available int
}

// User is a member of a company as returned by the remote API.
type User struct {
	ID               int
	Username         string
	FullName         string
	DocumentID       string
	Phone            string
	Contract         string
	Active           bool
	Role             *RemoteRole
	HierarchyName    string
	ContractStart    string
	ContractEnd      string
	SupervisorName   string
	ContractedAmount float64
	PaidAmount       float64
	Balance          float64
}
