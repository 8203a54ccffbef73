package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Taxonomy: &mockTaxonomyService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:   &mockSearchService{},
			Taxonomy: &mockTaxonomyService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		ports := &Ports{Taxonomy: &mockTaxonomyService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSearchService)
	})

	t.Run("nil taxonomy service returns error", func(t *testing.T) {
		ports := &Ports{Search: &mockSearchService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingTaxonomyService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Search:   &mockSearchService{},
			Taxonomy: &mockTaxonomyService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_SessionLabel(t *testing.T) {
	anon, err := NewServer(&Ports{Search: &mockSearchService{}, Taxonomy: &mockTaxonomyService{}})
	require.NoError(t, err)
	assert.Equal(t, "anonymous", anon.sessionLabel())

	alice, err := NewServer(&Ports{
		Search:   &mockSearchService{},
		Taxonomy: &mockTaxonomyService{},
		Session:  domain.Session{UserID: "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.sessionLabel())
}
