// Package chatbot implements the answer-resolution pipeline: a cascade
// of embedding, lexical and fuzzy matching over the knowledge base with
// response caching and conversation logging.
package chatbot

import (
	"aquanqa/aquanqa/config"
	"aquanqa/aquanqa/services/matcher"
	"aquanqa/aquanqa/sources/psql/models"
	"aquanqa/aquanqa/utils/logging"
	"aquanqa/aquanqa/utils/textutil"
	"aquanqa/aquanqa/utils/types"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
)

const (
	// AnonymousSession groups turns from callers without a session id.
	AnonymousSession = "anonymous"

	minQuestionLength      = 3
	maxRecommendations     = 3
	maxFallbackSuggestions = 3

	fallbackAnswer = "Lo siento, no tengo información específica sobre eso. ¿Podrías reformular tu pregunta o ser más específico?"

	frequentNamespace = "chatbot:frequent_questions:"
)

// KnowledgeStore is the slice of the knowledge DAO the pipeline reads.
type KnowledgeStore interface {
	ListActive(ctx context.Context) ([]models.KnowledgeEntry, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Recommendations(ctx context.Context, id uuid.UUID, limit int) ([]models.KnowledgeEntry, error)
	MostViewed(ctx context.Context, limit int) ([]models.KnowledgeEntry, error)
}

// ConversationStore appends one record per resolved query.
type ConversationStore interface {
	Record(ctx context.Context, sessionID string, userID *int, questionText, answerText string, matchedKnowledgeID *uuid.UUID) (*models.Conversation, error)
	History(ctx context.Context, userID *int, limit int) ([]models.Conversation, error)
}

// UserStore resolves token identities to stored users.
type UserStore interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

// MatchIndex is the embedding side of the cascade.
type MatchIndex interface {
	BestMatch(ctx context.Context, question string, entries []models.KnowledgeEntry) (*models.KnowledgeEntry, float64, error)
}

// ResultCache memoizes resolutions. Implementations must be safe to
// call when the backing store is down (degrade to miss / no-op).
type ResultCache interface {
	GetResult(ctx context.Context, question string) (*types.ChatbotResult, bool)
	SetResult(ctx context.Context, question string, result *types.ChatbotResult)
	InvalidateNamespace(ctx context.Context, prefix string) error
}

// Thresholds gate each method independently; the three scores live on
// different scales and are never compared globally.
type Thresholds struct {
	Embedding float64
	Lexical   float64
	Fuzzy     float64
}

func ThresholdsFromConfig(cfg config.Config) Thresholds {
	return Thresholds{
		Embedding: cfg.EmbeddingThreshold,
		Lexical:   cfg.LexicalThreshold,
		Fuzzy:     cfg.FuzzyThreshold,
	}
}

type Service struct {
	store         KnowledgeStore
	conversations ConversationStore
	users         UserStore
	index         MatchIndex
	cache         ResultCache
	thresholds    Thresholds
}

func NewService(store KnowledgeStore, conversations ConversationStore, users UserStore, index MatchIndex, cache ResultCache, thresholds Thresholds) *Service {
	return &Service{
		store:         store,
		conversations: conversations,
		users:         users,
		index:         index,
		cache:         cache,
		thresholds:    thresholds,
	}
}

func validateQuestion(question string) error {
	trimmed := strings.TrimSpace(question)
	if len([]rune(trimmed)) < minQuestionLength {
		return fmt.Errorf("%w: at least %d characters required", ErrInvalidQuestion, minQuestionLength)
	}
	if !textutil.HasLetter(trimmed) {
		return fmt.Errorf("%w: at least one letter required", ErrInvalidQuestion)
	}
	return nil
}

// Resolve runs the full cascade for one user question. Only invalid
// input or a failing knowledge read surface as errors; matcher and
// cache trouble degrade to the next strategy.
func (s *Service) Resolve(ctx context.Context, query types.ChatbotQuery, userID *int) (*types.ChatbotResult, error) {
	defer logging.LogDuration(ctx, "chatbot_resolve")()

	if err := validateQuestion(query.Question); err != nil {
		return nil, err
	}
	question := strings.TrimSpace(query.Question)

	sessionID := query.SessionID
	if sessionID == "" {
		sessionID = AnonymousSession
	}
	useCache := query.CacheEnabled()

	if useCache {
		if cached, ok := s.cache.GetResult(ctx, question); ok {
			cached.Cached = true
			return cached, nil
		}
	}

	entries, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	var best *models.KnowledgeEntry
	score := 0.0
	method := types.MethodNone

	// Level 1: embeddings, the primary strategy.
	match, embScore, err := s.index.BestMatch(ctx, question, entries)
	if err != nil {
		logging.AppLogger.Warn("embedding search unavailable", zap.Error(err))
	} else {
		best, score = match, embScore
		if best != nil && score >= s.thresholds.Embedding {
			method = types.MethodEmbeddings
		}
	}

	// Level 2: lexical overlap, only when embeddings did not accept.
	// Never downgrades a better embedding score.
	if method == types.MethodNone {
		if lexMatch, lexScore := matcher.BestLexical(question, entries); lexMatch != nil &&
			lexScore >= s.thresholds.Lexical && lexScore > score {
			best, score = lexMatch, lexScore
			method = types.MethodLexical
		}
	}

	// Level 3: fuzzy, the most permissive matcher, so it carries the
	// strictest acceptance bar.
	if method == types.MethodNone {
		if fzMatch, fzScore := matcher.BestFuzzy(question, entries); fzMatch != nil &&
			fzScore >= s.thresholds.Fuzzy && fzScore > score {
			best, score = fzMatch, fzScore
			method = types.MethodFuzzy
		}
	}

	result := &types.ChatbotResult{
		Score:     score,
		Method:    method,
		Timestamp: time.Now().UTC(),
	}

	var matchedID *uuid.UUID
	if method != types.MethodNone {
		result.Answer = best.Answer
		result.MatchedQuestion = &best.Question
		result.KnowledgeID = &best.ID
		result.Category = best.CategoryName()
		matchedID = &best.ID

		if err := s.store.IncrementViews(ctx, best.ID); err != nil {
			logging.AppLogger.Warn("view count increment failed", zap.String("id", best.ID.String()), zap.Error(err))
		} else if err := s.cache.InvalidateNamespace(ctx, frequentNamespace); err != nil {
			logging.AppLogger.Warn("frequent questions invalidation failed", zap.Error(err))
		}
		result.RecommendedQuestions = s.recommendationsFor(ctx, best)
	} else {
		result.Answer = fallbackAnswer
		result.RecommendedQuestions = s.fallbackSuggestions(ctx)
	}

	// Best effort: a failed log write must never fail the answer.
	if _, err := s.conversations.Record(ctx, sessionID, s.verifiedUser(ctx, userID), question, result.Answer, matchedID); err != nil {
		logging.AppLogger.Warn("conversation log failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	if useCache {
		s.cache.SetResult(ctx, question, result)
	}

	logging.AppLogger.Info("query resolved",
		zap.String("method", method),
		zap.Float64("score", score),
		zap.Bool("matched", matchedID != nil),
	)
	return result, nil
}

// verifiedUser drops attribution when the token references a user that
// no longer exists, so a stale JWT does not break the conversation
// insert. Lookup errors keep the id; the log write is best effort
// anyway.
func (s *Service) verifiedUser(ctx context.Context, userID *int) *int {
	if userID == nil {
		return nil
	}
	user, err := s.users.GetUserByID(ctx, *userID)
	if err != nil {
		logging.AppLogger.Warn("user lookup failed", zap.Int("user_id", *userID), zap.Error(err))
		return userID
	}
	if user == nil {
		logging.AppLogger.Warn("token references unknown user", zap.Int("user_id", *userID))
		return nil
	}
	return userID
}

// recommendationsFor loads up to three active follow-ups, dropping the
// matched entry itself in case an admin wired a self-loop.
func (s *Service) recommendationsFor(ctx context.Context, entry *models.KnowledgeEntry) []types.RecommendedQuestion {
	recommended, err := s.store.Recommendations(ctx, entry.ID, maxRecommendations+1)
	if err != nil {
		logging.AppLogger.Warn("loading recommendations failed", zap.String("id", entry.ID.String()), zap.Error(err))
		return []types.RecommendedQuestion{}
	}
	out := make([]types.RecommendedQuestion, 0, maxRecommendations)
	for i := range recommended {
		if recommended[i].ID == entry.ID {
			continue
		}
		out = append(out, types.RecommendedQuestion{
			ID:       recommended[i].ID,
			Question: recommended[i].Question,
			Category: recommended[i].CategoryName(),
		})
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// fallbackSuggestions offers the most-viewed questions so an unmatched
// user is not left with nothing.
func (s *Service) fallbackSuggestions(ctx context.Context) []types.RecommendedQuestion {
	frequent, err := s.store.MostViewed(ctx, maxFallbackSuggestions)
	if err != nil {
		logging.AppLogger.Warn("loading fallback suggestions failed", zap.Error(err))
		return []types.RecommendedQuestion{}
	}
	out := make([]types.RecommendedQuestion, 0, len(frequent))
	for i := range frequent {
		out = append(out, types.RecommendedQuestion{
			ID:       frequent[i].ID,
			Question: frequent[i].Question,
			Category: frequent[i].CategoryName(),
		})
	}
	return out
}

// History returns recent conversation records, optionally scoped to one
// user.
func (s *Service) History(ctx context.Context, userID *int, limit int) ([]models.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.conversations.History(ctx, userID, limit)
}

// questionSource adapts entries to sahilm/fuzzy's Source.
type questionSource []models.KnowledgeEntry

func (q questionSource) String(i int) string { return q[i].Question }
func (q questionSource) Len() int            { return len(q) }

// Suggest ranks active question titles for typeahead. This is display
// filtering, not answer resolution; no side effects.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]types.Suggestion, error) {
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	entries, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	matches := fuzzy.FindFrom(strings.TrimSpace(query), questionSource(entries))
	out := make([]types.Suggestion, 0, limit)
	for _, m := range matches {
		out = append(out, types.Suggestion{ID: entries[m.Index].ID, Question: entries[m.Index].Question})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
