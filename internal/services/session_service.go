package services

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

// SessionService owns opaque session tokens. Tokens are server-side rows,
// revoked by deletion; expiry and idle timeout are checked lazily on every
// resolution.
type SessionService struct {
	db          *gorm.DB
	ttl         time.Duration
	idleTimeout time.Duration
}

// NewSessionService creates a new SessionService
func NewSessionService(db *gorm.DB, ttl, idleTimeout time.Duration) *SessionService {
	return &SessionService{db: db, ttl: ttl, idleTimeout: idleTimeout}
}

// Create generates an unguessable token and persists a session for memberID.
func (s *SessionService) Create(memberID uint) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(apperrors.Internal, err, "failed to generate session token")
	}
	token := hex.EncodeToString(buf)

	now := time.Now()
	session := models.Session{
		MemberID:       memberID,
		Token:          token,
		ExpiresAt:      now.Add(s.ttl),
		LastActivityAt: now,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return "", apperrors.Wrap(apperrors.Internal, err, "failed to persist session")
	}

	return token, nil
}

// Resolve maps a token to its member. Expired or idle sessions are deleted
// on the spot; deactivated members are rejected. Every successful resolution
// refreshes the idle timestamp (last-write-wins under concurrent requests).
func (s *SessionService) Resolve(token string) (*models.Member, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.Auth, "Authentication required")
	}

	var session models.Session
	if err := s.db.Where("token = ?", token).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.Auth, "Invalid or expired session")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to look up session")
	}

	now := time.Now()
	if now.After(session.ExpiresAt) || now.Sub(session.LastActivityAt) > s.idleTimeout {
		if err := s.db.Delete(&models.Session{}, session.ID).Error; err != nil {
			log.Printf("Failed to delete stale session %d: %v", session.ID, err)
		}
		return nil, apperrors.New(apperrors.Auth, "Invalid or expired session")
	}

	// Idle-stamp races between concurrent requests of one session are harmless
	if err := s.db.Model(&models.Session{}).Where("id = ?", session.ID).
		Update("last_activity_at", now).Error; err != nil {
		log.Printf("Failed to refresh session %d activity: %v", session.ID, err)
	}

	var member models.Member
	if err := s.db.Where("id = ?", session.MemberID).First(&member).Error; err != nil {
		return nil, apperrors.New(apperrors.Auth, "Invalid or expired session")
	}
	if !member.IsActive {
		return nil, apperrors.New(apperrors.Auth, "Account is inactive")
	}

	return &member, nil
}

// Destroy deletes the session for token; deleting an unknown token is a no-op.
func (s *SessionService) Destroy(token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, err, "failed to delete session")
	}
	return nil
}
