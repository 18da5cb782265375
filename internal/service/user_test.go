package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

func TestUserService_EnsureUser(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users)
	ctx := context.Background()

	u, err := svc.EnsureUser(ctx, entities.NewUser(9, 90, "Amina", "amina", "fr"))
	require.NoError(t, err)
	assert.False(t, u.Welcomed)

	require.NoError(t, svc.MarkWelcomed(ctx, 9))
	users.users[9].LastRead = &entities.LastRead{SurahNumber: 2, VerseNumber: 255}

	u, err = svc.EnsureUser(ctx, entities.NewUser(9, 91, "Amina", "amina_b", "fr"))
	require.NoError(t, err)
	assert.True(t, u.Welcomed)
	assert.Equal(t, int64(91), u.ChatID)
	assert.Equal(t, "2:255", u.BookmarkKey())

	_, err = svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
}
