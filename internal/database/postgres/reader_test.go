package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/autostruct/internal/errs"
)

func TestNewInvalidURL(t *testing.T) {
	r, err := New(context.Background(), Config{URL: "postgres://user@host:not-a-port/db"})
	assert.Nil(t, r)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidConfig(err))
}

func TestForeignKeyQueryPairsCompositeColumns(t *testing.T) {
	// A composite constraint must pair each referencing column with exactly
	// one referenced column. Joining the two column sets on constraint name
	// alone cross-products them, and without the ordinal in the ordering the
	// column order within a constraint is unspecified.
	assert.Contains(t, foreignKeyQuery, "kcu.position_in_unique_constraint")
	assert.Contains(t, foreignKeyQuery, "ORDER BY rc.constraint_name, kcu.ordinal_position")
}
