package filesystem

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory creates filesystem connectors from source configuration.
type Factory struct{}

// NewFactory creates a connector factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds a connector for the given source and validates its
// root path.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Connector, error) {
	connector := New(source.ID, source.Path)
	if err := connector.Validate(ctx); err != nil {
		return nil, err
	}
	return connector, nil
}
