package authinfra

import (
	"context"
	"time"

	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/kernel"
	"github.com/hayat-market/authgate/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

func NewLogxAuditService() auth.AuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogLoginAttempt(_ context.Context, userID kernel.UserID, method string, success bool, ip string, userAgent string) {
	logx.WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"user_id":     userID,
		"method":      method,
		"success":     success,
		"ip":          ip,
		"user_agent":  userAgent,
		"timestamp":   time.Now(),
	}).Info("Audit: login attempt")
}

func (s *LogxAuditService) LogLogout(_ context.Context, userID kernel.UserID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "logout",
		"user_id":     userID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: logout")
}

func (s *LogxAuditService) LogOTPIssued(_ context.Context, owner string, purpose string) {
	logx.WithFields(logx.Fields{
		"audit_event": "otp_issued",
		"owner":       owner,
		"purpose":     purpose,
		"timestamp":   time.Now(),
	}).Info("Audit: OTP issued")
}

func (s *LogxAuditService) LogOTPVerification(_ context.Context, contact string, success bool) {
	logx.WithFields(logx.Fields{
		"audit_event": "otp_verification",
		"contact":     contact,
		"success":     success,
		"timestamp":   time.Now(),
	}).Info("Audit: OTP verification")
}

func (s *LogxAuditService) LogAccountCreated(_ context.Context, userID kernel.UserID, method string, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "account_created",
		"user_id":     userID,
		"method":      method,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: account created")
}

func (s *LogxAuditService) LogAccountLinked(_ context.Context, userID kernel.UserID, provider string) {
	logx.WithFields(logx.Fields{
		"audit_event": "account_linked",
		"user_id":     userID,
		"provider":    provider,
		"timestamp":   time.Now(),
	}).Info("Audit: account linked")
}

func (s *LogxAuditService) LogPasswordReset(_ context.Context, userID kernel.UserID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "password_reset",
		"user_id":     userID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: password reset")
}
