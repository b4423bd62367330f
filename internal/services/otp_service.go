package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/models"
)

// OTP verification failures.
var (
	ErrOTPNotFound = errors.New("otp not found")
	ErrOTPExpired  = errors.New("otp expired")
)

// OTPService issues and validates one-time passcodes persisted per
// (user, purpose). Codes expire lazily: expiry is checked at verification,
// there is no background sweep.
type OTPService struct {
	db     *gorm.DB
	mailer Mailer
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB, mailer Mailer) *OTPService {
	return &OTPService{db: db, mailer: mailer}
}

// Issue replaces any live code for (user, purpose) with a fresh one and
// mails it. A delivery failure is returned to the caller; the stored code is
// left in place and is superseded by the next issue.
func (s *OTPService) Issue(user *models.User, purpose string) (*models.OTP, error) {
	if err := s.db.Where("user_id = ? AND purpose = ?", user.ID, purpose).
		Delete(&models.OTP{}).Error; err != nil {
		return nil, err
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	otp := models.OTP{
		UserID:  user.ID,
		Code:    code,
		Purpose: purpose,
	}
	if err := s.db.Create(&otp).Error; err != nil {
		return nil, err
	}

	subject := "Your login code"
	if purpose == models.OTPPurposeVerification {
		subject = "Verify your email address"
	}
	if err := s.mailer.Send(user.Email, subject, OTPMessage(code)); err != nil {
		return nil, err
	}

	return &otp, nil
}

// Verify checks the submitted code for (user, purpose). The newest matching
// record wins when more than one exists. The record is not deleted here;
// the consuming flow calls Consume after it has acted on the success.
func (s *OTPService) Verify(user *models.User, code, purpose string) error {
	var otp models.OTP
	err := s.db.Where("user_id = ? AND code = ? AND purpose = ?", user.ID, code, purpose).
		Order("created_at desc").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPNotFound
		}
		return err
	}

	if !otp.IsValid(time.Now()) {
		// Best-effort cleanup of the dead code.
		if err := s.db.Delete(&otp).Error; err != nil {
			log.Printf("[OTP] Failed to delete expired code for user %s: %v", user.ID, err)
		}
		return ErrOTPExpired
	}

	return nil
}

// Consume removes every code for (user, purpose) after a successful verify.
func (s *OTPService) Consume(user *models.User, purpose string) error {
	return s.db.Where("user_id = ? AND purpose = ?", user.ID, purpose).
		Delete(&models.OTP{}).Error
}

// GenerateCode returns a uniformly random 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
