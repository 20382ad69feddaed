package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lifehubhq/lifehub/internal/domain/chat"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) CreateConversation(ctx context.Context, ownerID string, req chat.CreateConversationRequest) (chat.Conversation, error) {
	var c chat.Conversation

	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, user_id, title, created_at, updated_at`,
		uuid.NewString(), ownerID, req.Title,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return chat.Conversation{}, err
	}

	return c, nil
}

func (r *ChatRepo) ListConversations(ctx context.Context, ownerID string) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]chat.Conversation, 0)

	for rows.Next() {
		var c chat.Conversation

		err = rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ChatRepo) GetConversation(ctx context.Context, ownerID, id string) (chat.Conversation, error) {
	var c chat.Conversation

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_conversations
		WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return chat.Conversation{}, chat.ErrConversationNotFound
		}

		return chat.Conversation{}, err
	}

	return c, nil
}

func (r *ChatRepo) DeleteConversation(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_conversations WHERE id = $1 AND user_id = $2`, id, ownerID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return chat.ErrConversationNotFound
	}

	return nil
}

// CreateMessage appends to a conversation the effective owner holds.
// Parent check first so a foreign conversation looks missing, and the
// conversation's updated_at moves so it sorts to the top.
func (r *ChatRepo) CreateMessage(ctx context.Context, ownerID, conversationID, authorID string, req chat.CreateMessageRequest) (chat.Message, error) {
	_, err := r.GetConversation(ctx, ownerID, conversationID)

	if err != nil {
		return chat.Message{}, err
	}

	var m chat.Message

	err = r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, conversation_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, conversation_id, author_id, body, created_at`,
		uuid.NewString(), conversationID, authorID, req.Body,
	).Scan(&m.ID, &m.ConversationID, &m.AuthorID, &m.Body, &m.CreatedAt)

	if err != nil {
		return chat.Message{}, err
	}

	_, err = r.pool.Exec(ctx, `UPDATE chat_conversations SET updated_at = NOW() WHERE id = $1`, conversationID)

	if err != nil {
		return chat.Message{}, err
	}

	return m, nil
}

// ListMessages returns messages oldest first, optionally only those
// after a known message id. This is what the sidebar polls.
func (r *ChatRepo) ListMessages(ctx context.Context, ownerID, conversationID string, filter chat.MessageFilter) ([]chat.Message, error) {
	_, err := r.GetConversation(ctx, ownerID, conversationID)

	if err != nil {
		return nil, err
	}

	limit := filter.Limit

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows pgx.Rows

	if filter.AfterID != nil {
		rows, err = r.pool.Query(ctx, `
			SELECT id, conversation_id, author_id, body, created_at
			FROM chat_messages
			WHERE conversation_id = $1
			  AND (created_at, id) > (
			      SELECT created_at, id FROM chat_messages WHERE id = $2 AND conversation_id = $1
			  )
			ORDER BY created_at ASC, id ASC
			LIMIT $3`,
			conversationID, *filter.AfterID, limit,
		)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT id, conversation_id, author_id, body, created_at
			FROM chat_messages
			WHERE conversation_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT $2`,
			conversationID, limit,
		)
	}

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]chat.Message, 0)

	for rows.Next() {
		var m chat.Message

		err = rows.Scan(&m.ID, &m.ConversationID, &m.AuthorID, &m.Body, &m.CreatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}
