package services

import (
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

var evmAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Wallet types accepted at login.
const (
	WalletTypeRonin    = "ronin"
	WalletTypeMetamask = "metamask"
	WalletTypeWaypoint = "waypoint"
)

// AuthService handles wallet login and session lifecycle.
type AuthService struct {
	db           *gorm.DB
	sessions     *SessionService
	referrals    *ReferralService
	adminWallets map[string]bool
}

// NewAuthService creates a new AuthService. adminWallets are normalized
// addresses promoted to admin on login.
func NewAuthService(db *gorm.DB, sessions *SessionService, referrals *ReferralService, adminWallets []string) *AuthService {
	admins := make(map[string]bool, len(adminWallets))
	for _, w := range adminWallets {
		if addr, err := NormalizeWalletAddress(w); err == nil {
			admins[addr] = true
		}
	}
	return &AuthService{
		db:           db,
		sessions:     sessions,
		referrals:    referrals,
		adminWallets: admins,
	}
}

// NormalizeWalletAddress converts ronin:-prefixed addresses to the 0x form
// and lowercases the result.
func NormalizeWalletAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(strings.ToLower(address), "ronin:") {
		address = "0x" + address[len("ronin:"):]
	}
	if !evmAddressRe.MatchString(address) {
		return "", apperrors.New(apperrors.Validation, "Invalid wallet address")
	}
	return strings.ToLower(address), nil
}

func validWalletType(walletType string) bool {
	switch walletType {
	case WalletTypeRonin, WalletTypeMetamask, WalletTypeWaypoint:
		return true
	}
	return false
}

// LoginResult bundles the member and their fresh session token.
type LoginResult struct {
	Member *models.Member
	Token  string
	IsNew  bool
}

// Login finds or creates the member for the wallet and opens a session.
// An unknown referral code is logged and ignored; a deactivated member is
// rejected before any session is created.
func (s *AuthService) Login(walletAddress, walletType, referralCode string) (*LoginResult, error) {
	if !validWalletType(walletType) {
		return nil, apperrors.New(apperrors.Validation, "Invalid wallet type")
	}
	address, err := NormalizeWalletAddress(walletAddress)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isNew := false

	var member models.Member
	err = s.db.Where("wallet_address = ?", address).First(&member).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		member = models.Member{
			WalletAddress: address,
			WalletType:    walletType,
			IsActive:      true,
			IsAdmin:       s.adminWallets[address],
		}
		if referralCode != "" {
			if referrer, rerr := s.referrals.Resolve(referralCode); rerr == nil {
				member.ReferredBy = &referrer.ID
			} else {
				log.Printf("Ignoring invalid referral code %q at signup: %v", referralCode, rerr)
			}
		}
		if err := s.db.Create(&member).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create member")
		}
		isNew = true
	case err != nil:
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load member")
	}

	if !member.IsActive {
		return nil, apperrors.New(apperrors.Forbidden, "Account is deactivated")
	}

	if err := s.referrals.EnsureCode(&member); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"last_login": now, "wallet_type": walletType}
	if s.adminWallets[address] && !member.IsAdmin {
		updates["is_admin"] = true
		member.IsAdmin = true
	}
	if err := s.db.Model(&member).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to update member login")
	}
	member.LastLogin = &now
	member.WalletType = walletType

	token, err := s.sessions.Create(member.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Member: &member, Token: token, IsNew: isNew}, nil
}

// Logout destroys the session for the given token. Idempotent.
func (s *AuthService) Logout(token string) error {
	return s.sessions.Destroy(token)
}

// SetXHandle links an X.com handle to the member. The handle must be unique
// across members.
func (s *AuthService) SetXHandle(member *models.Member, handle string) error {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" || len(handle) > 15 {
		return apperrors.New(apperrors.Validation, "Invalid X handle")
	}

	var existing models.Member
	err := s.db.Where("x_handle = ? AND id != ?", handle, member.ID).First(&existing).Error
	if err == nil {
		return apperrors.New(apperrors.Conflict, "X handle already linked to another account")
	}
	if err != gorm.ErrRecordNotFound {
		return apperrors.Wrap(apperrors.Internal, err, "failed to check X handle")
	}

	if err := s.db.Model(member).Update("x_handle", handle).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, err, "failed to set X handle")
	}
	member.XHandle = &handle
	return nil
}
