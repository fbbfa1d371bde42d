package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, repo.Get(ctx, "timetable:section=1", &out), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "timetable:section=1", []string{"x"}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "timetable:*")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Close())
}
