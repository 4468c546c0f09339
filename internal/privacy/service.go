package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

// PrivacyService handles account deletion and data retention
type PrivacyService struct {
	db     *database.DB
	repo   *database.Repository
	logger *slog.Logger

	chatRetentionDays int
}

// NewService creates a new privacy service
func NewService(db *database.DB, repo *database.Repository, logger *slog.Logger, chatRetentionDays int) *PrivacyService {
	if chatRetentionDays <= 0 {
		chatRetentionDays = 90
	}
	return &PrivacyService{
		db:                db,
		repo:              repo,
		logger:            logger,
		chatRetentionDays: chatRetentionDays,
	}
}

// AnonymizeData hashes a piece of personal data for log-safe references
func (ps *PrivacyService) AnonymizeData(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// DeleteUserData removes an account and its personal data. Rating rows
// are kept (their contribution lives on in the aggregates) but stripped
// of the account id; everything else attributable to the user is
// removed.
func (ps *PrivacyService) DeleteUserData(userID string) error {
	ps.logger.Info("deleting user data", "user_hash", ps.AnonymizeData(userID)[:8])

	if _, err := ps.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	commentResult, err := ps.db.Exec(`DELETE FROM comments WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	commentRows, _ := commentResult.RowsAffected()

	messageResult, err := ps.db.Exec(`DELETE FROM chat_messages WHERE sender_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	messageRows, _ := messageResult.RowsAffected()

	// Rating rows survive so the aggregates stay consistent, but their
	// owner column is replaced with an opaque hash so nothing links
	// them back to the account. The (faculty, user) uniqueness holds:
	// each of the user's rows targets a different faculty.
	anonymized := "deleted_" + ps.AnonymizeData(userID)[:12]
	ratingResult, err := ps.db.Exec(`UPDATE ratings SET user_id = ? WHERE user_id = ?`, anonymized, userID)
	if err != nil {
		return fmt.Errorf("failed to anonymize ratings: %w", err)
	}
	ratingRows, _ := ratingResult.RowsAffected()

	if _, err := ps.db.Exec(`DELETE FROM users WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	ps.logger.Info("user data deleted",
		"comments_deleted", commentRows,
		"chat_messages_deleted", messageRows,
		"ratings_anonymized", ratingRows,
	)
	return nil
}

// RunCleanup drops expired sessions and chat messages past retention.
// Called from the daily maintenance ticker.
func (ps *PrivacyService) RunCleanup() {
	sessions, err := ps.repo.DeleteExpiredSessions(time.Now().UTC())
	if err != nil {
		ps.logger.Error("session cleanup failed", "error", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -ps.chatRetentionDays)
	messages, err := ps.repo.DeleteChatMessagesBefore(cutoff)
	if err != nil {
		ps.logger.Error("chat retention cleanup failed", "error", err)
	}

	if sessions > 0 || messages > 0 {
		ps.logger.Info("retention cleanup completed",
			"expired_sessions", sessions,
			"pruned_chat_messages", messages,
		)
	}
}

// GetDataRetentionInfo describes the retention policy for the API
func (ps *PrivacyService) GetDataRetentionInfo() map[string]interface{} {
	return map[string]interface{}{
		"session_lifetime_days":       int(database.SessionTTL.Hours() / 24),
		"chat_retention_days":         ps.chatRetentionDays,
		"ratings_retention":           "indefinite, stored without user attribution in aggregates",
		"anonymization_method":        "SHA-256",
		"data_deletion_response_time": "24 hours",
	}
}
