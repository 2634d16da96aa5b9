package constants

// Pagination defaults shared by list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)
