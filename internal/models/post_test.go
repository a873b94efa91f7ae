package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestPostIsResponse(t *testing.T) {
	assert.False(t, (&Post{Type: PostTypePost}).IsResponse())
	assert.True(t, (&Post{Type: PostTypeResponse}).IsResponse())
}

// String column defaults must be quoted literals; a bare word renders as a
// column reference in postgres DDL and migration fails.
func TestPostColumnDefaultsAreQuoted(t *testing.T) {
	s, err := schema.Parse(&Post{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	typeField := s.LookUpField("type")
	require.NotNil(t, typeField)
	assert.Equal(t, "'POST'", typeField.DefaultValue)

	statusField := s.LookUpField("status")
	require.NotNil(t, statusField)
	assert.Equal(t, "'AWAITING_PROCESSING'", statusField.DefaultValue)
}
