package badgerdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/relay-chat/chat-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *MessageRepository {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewMessageRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestAppend_AssignsOrderedIDs(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	var prevID int64
	for i := 0; i < 10; i++ {
		msg, err := repo.Append(ctx, "alice", fmt.Sprintf("message %d", i), "dev")
		req.NoError(err)
		req.Greater(msg.ID, prevID, "ids must grow monotonically within a room")
		req.False(msg.CreatedAt.IsZero())
		req.Equal("dev", msg.Room)
		prevID = msg.ID
	}
}

func TestAppend_ValidationStoresNothing(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, "alice", "   ", "dev")
	req.Error(err)
	req.True(domain.IsValidation(err))

	msgs, err := repo.Recent(ctx, "dev", 10)
	req.NoError(err)
	req.Empty(msgs, "rejected publish must leave no record")
}

func TestAppend_DefaultsRoom(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)

	msg, err := repo.Append(context.Background(), "alice", "hi", "")
	req.NoError(err)
	req.Equal(domain.DefaultRoom, msg.Room)
}

func TestRecent_OldestFirstWindow(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := repo.Append(ctx, "bob", fmt.Sprintf("m%d", i), "dev")
		req.NoError(err)
	}

	msgs, err := repo.Recent(ctx, "dev", 3)
	req.NoError(err)
	req.Len(msgs, 3)
	// окно — последние 3, отданные oldest-first
	req.Equal("m4", msgs[0].Text)
	req.Equal("m5", msgs[1].Text)
	req.Equal("m6", msgs[2].Text)
	for i := 1; i < len(msgs); i++ {
		req.Less(msgs[i-1].ID, msgs[i].ID)
		req.False(msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}
}

func TestRecent_ClampsToHardMaximum(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	total := domain.MaxHistoryLimit + 5
	for i := 0; i < total; i++ {
		_, err := repo.Append(ctx, "carol", fmt.Sprintf("m%d", i), "busy")
		req.NoError(err)
	}

	msgs, err := repo.Recent(ctx, "busy", 1000)
	req.NoError(err)
	req.Len(msgs, domain.MaxHistoryLimit)
	// самое свежее сообщение — последним
	req.Equal(fmt.Sprintf("m%d", total-1), msgs[len(msgs)-1].Text)
}

func TestRecent_DefaultLimit(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < domain.DefaultHistoryLimit+10; i++ {
		_, err := repo.Append(ctx, "dan", fmt.Sprintf("m%d", i), "dev")
		req.NoError(err)
	}

	msgs, err := repo.Recent(ctx, "dev", 0)
	req.NoError(err)
	req.Len(msgs, domain.DefaultHistoryLimit)
}

func TestRecent_EmptyRoom(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)

	msgs, err := repo.Recent(context.Background(), "nonexistent-room", 50)
	req.NoError(err, "empty room is not an error")
	req.Empty(msgs)
}

func TestRooms_DelimiterInNameDoesNotLeak(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, "alice", "plain room", "a")
	req.NoError(err)
	_, err = repo.Append(ctx, "bob", "colon room", "a:b")
	req.NoError(err)
	_, err = repo.Append(ctx, "alice", "plain again", "a")
	req.NoError(err)

	msgs, err := repo.Recent(ctx, "a", 10)
	req.NoError(err)
	req.Len(msgs, 2)
	for _, m := range msgs {
		req.Equal("a", m.Room, "history of %q must not include room %q", "a", "a:b")
	}

	msgs, err = repo.Recent(ctx, "a:b", 10)
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("colon room", msgs[0].Text)
}

func TestRooms_Isolated(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, "alice", "for dev", "dev")
	req.NoError(err)
	_, err = repo.Append(ctx, "bob", "for general", "general")
	req.NoError(err)

	msgs, err := repo.Recent(ctx, "dev", 10)
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("for dev", msgs[0].Text)
}
