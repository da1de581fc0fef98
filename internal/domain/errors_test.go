package domain

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NotFound("GetTeam", "team", "t-1")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestError_MessageHidesCause(t *testing.T) {
	err := Wrap(KindDataConsistencyFault, "Increment", "occupancy record missing", sql.ErrNoRows)

	assert.Contains(t, err.Error(), "sql: no rows")
	assert.Equal(t, "occupancy record missing", PublicMessage(err))
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPublicMessage_Untyped(t *testing.T) {
	assert.Equal(t, "internal error", PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("x")))
}
