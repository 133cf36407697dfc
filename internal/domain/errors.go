package domain

import "errors"

var (
	// ErrUnknownFacet signals a facet name missing from the facet table.
	ErrUnknownFacet = errors.New("unknown facet")
	// ErrInvalidOperator signals a boolean operator other than AND/OR.
	ErrInvalidOperator = errors.New("invalid boolean operator")
	// ErrInvalidRequest signals malformed caller input detected before any engine call.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEngine signals a failure reported by the search engine or its transport.
	ErrEngine = errors.New("search engine error")
)
