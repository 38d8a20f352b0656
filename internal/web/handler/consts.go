package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// StorePath is the prefix of every store scoped route.
	StorePath = APIPath + "/stores/:storeId"

	// QuerySearch is the query parameter name for the search term.
	QuerySearch = "search"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
