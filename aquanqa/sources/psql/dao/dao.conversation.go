package dao

import (
	"aquanqa/aquanqa/sources/psql/models"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationDAO speaks pgx directly: the log is append-only inserts
// and ordered reads, no ORM mapping needed.
type ConversationDAO struct {
	DB *pgxpool.Pool
}

func NewConversationDAO(db *pgxpool.Pool) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

func (dao *ConversationDAO) CreateSessionID() string {
	return uuid.New().String()
}

func (dao *ConversationDAO) Record(ctx context.Context, sessionID string, userID *int, questionText, answerText string, matchedKnowledgeID *uuid.UUID) (*models.Conversation, error) {
	query := `INSERT INTO chat_conversations (session_id, user_id, question_text, answer_text, matched_knowledge_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	row := dao.DB.QueryRow(ctx, query, sessionID, userID, questionText, answerText, matchedKnowledgeID)
	conv := models.Conversation{
		SessionID:          sessionID,
		UserID:             userID,
		QuestionText:       questionText,
		AnswerText:         answerText,
		MatchedKnowledgeID: matchedKnowledgeID,
	}
	if err := row.Scan(&conv.ID, &conv.CreatedAt); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) History(ctx context.Context, userID *int, limit int) ([]models.Conversation, error) {
	query := `SELECT id, session_id, user_id, question_text, answer_text, matched_knowledge_id, created_at
		FROM chat_conversations`
	var args []interface{}
	if userID != nil {
		query += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
		args = []interface{}{*userID, limit}
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = []interface{}{limit}
	}

	rows, err := dao.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		err := rows.Scan(&conv.ID, &conv.SessionID, &conv.UserID, &conv.QuestionText, &conv.AnswerText, &conv.MatchedKnowledgeID, &conv.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (dao *ConversationDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := dao.DB.QueryRow(ctx, `SELECT COUNT(*) FROM chat_conversations`).Scan(&n)
	return n, err
}

func (dao *ConversationDAO) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := dao.DB.QueryRow(ctx, `SELECT COUNT(*) FROM chat_conversations WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}
