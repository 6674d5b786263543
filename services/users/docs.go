package users

// Endpoint is one row of the static API reference
type Endpoint struct {
	Method         string `json:"method"`
	Path           string `json:"endpoint"`
	Description    string `json:"description"`
	Authentication string `json:"authentication"`
}

var endpoints = []Endpoint{
	{Method: "GET", Path: "/api/users", Description: "Retrieve all users", Authentication: "Required"},
	{Method: "GET", Path: "/api/users/:id", Description: "Retrieve user by ID", Authentication: "Required"},
	{Method: "POST", Path: "/api/users", Description: "Create new user with password hashing", Authentication: "Admin only"},
	{Method: "PUT", Path: "/api/users/:id", Description: "Update existing user", Authentication: "Admin or Owner"},
	{Method: "DELETE", Path: "/api/users/:id", Description: "Delete user", Authentication: "Admin only"},
	{Method: "GET", Path: "/api/health", Description: "Health check endpoint", Authentication: "None"},
}

// Endpoints returns the hardcoded endpoint table
func Endpoints() []Endpoint {
	out := make([]Endpoint, len(endpoints))
	copy(out, endpoints)
	return out
}
