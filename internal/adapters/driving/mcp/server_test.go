package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresAnswerService(t *testing.T) {
	_, err := NewServer(&Ports{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAnswerService)
}

func TestNewServer_AnswerServiceOnly(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestNewServer_AllPorts(t *testing.T) {
	server, err := NewServer(&Ports{
		Answer:    &mockAnswerService{},
		Source:    &mockSourceService{},
		Documents: &mockDocumentStore{},
	})
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   Ports
		wantErr bool
	}{
		{"empty", Ports{}, true},
		{"answer only", Ports{Answer: &mockAnswerService{}}, false},
		{"all set", Ports{
			Answer:    &mockAnswerService{},
			Source:    &mockSourceService{},
			Documents: &mockDocumentStore{},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
