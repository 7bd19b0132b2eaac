package parser

import (
	"fmt"

	"github.com/GavinRay97/morel/internal/token"
)

// ParseError is raised on malformed input (spec §6, §7).
type ParseError struct {
	Message string
	Pos     token.Pos
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError: %s at %s", e.Message, e.Pos)
}
