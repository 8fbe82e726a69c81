package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStar_IdempotentAndNotifiesOwner(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.profile(t, "u1", "alice")
	e.profile(t, "u2", "bob")
	repo := e.repository(t, "u1", "Night Drive", false)

	e.expectTx()
	got, err := e.stars.Star(ctx, "u2", repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stars)

	e.expectTx()
	got, err = e.stars.Star(ctx, "u2", repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stars)
	e.verify(t)

	sent := e.pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotificationStar, sent[0].Type)
	assert.Equal(t, "u1", sent[0].ToUserID)
	assert.Equal(t, "u2", sent[0].FromUserID)
	assert.Equal(t, "bob starred Night Drive", sent[0].Message)

	stored, err := e.notes.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sent[0].ID, stored[0].ID)

	ok, err := e.stars.Starred(ctx, "u2", repo.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStar_OwnRepositoryAndUnknownActor(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.profile(t, "u1", "alice")
	repo := e.repository(t, "u1", "Night Drive", false)

	e.expectTx()
	_, err := e.stars.Star(ctx, "u1", repo.ID)
	require.NoError(t, err)
	assert.Empty(t, e.pub.Sent())

	e.expectTx()
	got, err := e.stars.Star(ctx, "anon", repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stars)
	e.verify(t)

	sent := e.pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Someone starred Night Drive", sent[0].Message)
}

func TestUnstar(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.profile(t, "u1", "alice")
	repo := e.repository(t, "u1", "Night Drive", false)

	e.expectTx()
	_, err := e.stars.Star(ctx, "u2", repo.ID)
	require.NoError(t, err)

	e.expectTx()
	got, err := e.stars.Unstar(ctx, "u2", repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stars)

	e.expectTx()
	got, err = e.stars.Unstar(ctx, "u2", repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stars)
	e.verify(t)

	ok, err := e.stars.Starred(ctx, "u2", repo.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStar_PrivateRepository(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.profile(t, "u1", "alice")
	repo := e.repository(t, "u1", "Secret", true)

	_, err := e.stars.Star(ctx, "u2", repo.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = e.stars.Unstar(ctx, "u2", repo.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = e.stars.Star(ctx, "u2", "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	e.verify(t)
}
