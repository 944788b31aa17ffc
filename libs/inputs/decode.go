package inputs

import (
	"context"
)

// Decodable - and interface that allows for validation of inputs and params
type Decodable interface {
	Decode(context.Context, []byte) error
}
