package service

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/sms"
	"franchiseos-backend/internal/store"
	"franchiseos-backend/internal/websocket"

	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^(91)?[6-9]\d{9}$`)

// NormalizePhone strips separators and forces the 91 country prefix. All
// OTP records are keyed by the normalized form.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "+", "", "-", "").Replace(phone)
	if !phonePattern.MatchString(cleaned) {
		return "", ErrInvalidPhone
	}
	if !strings.HasPrefix(cleaned, "91") {
		cleaned = "91" + cleaned
	}
	return cleaned, nil
}

// DeviceAuthService pairs physical devices to franchise identities through
// a phone OTP. OTP records live in the same transactional document as
// everything else, so expiry, attempt counting, and consumption get the
// store's atomicity.
type DeviceAuthService struct {
	store       *store.Store
	sender      sms.Sender
	monitor     *websocket.Manager
	otpTTL      time.Duration
	maxAttempts int
}

func NewDeviceAuthService(st *store.Store, sender sms.Sender, monitor *websocket.Manager, otpTTL time.Duration, maxAttempts int) *DeviceAuthService {
	return &DeviceAuthService{
		store:       st,
		sender:      sender,
		monitor:     monitor,
		otpTTL:      otpTTL,
		maxAttempts: maxAttempts,
	}
}

// SendOTP stores a fresh 4-digit code for the phone (overwriting any
// pending one, attempts reset) and dispatches it. A dispatch failure
// retracts the stored record: a phone with no way to receive the code must
// not hold a valid one.
func (s *DeviceAuthService) SendOTP(phone string) (string, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}

	otp, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	_, err = s.store.TransactRetry(func(doc *domain.Document) (*store.MutationResult, error) {
		doc.OTPTokens[normalized] = domain.OTPToken{
			OTP:       otp,
			ExpiresAt: time.Now().Add(s.otpTTL),
			Attempts:  0,
			CreatedAt: time.Now().UTC(),
		}
		return &store.MutationResult{}, nil
	})
	if err != nil {
		return "", err
	}

	if err := s.sender.Send(normalized, otp); err != nil {
		log.Printf("[DeviceAuth] SMS dispatch failed for %s: %v", normalized, err)
		if _, retractErr := s.store.TransactRetry(func(doc *domain.Document) (*store.MutationResult, error) {
			delete(doc.OTPTokens, normalized)
			return &store.MutationResult{}, nil
		}); retractErr != nil {
			log.Printf("[DeviceAuth] Failed to retract otp for %s: %v", normalized, retractErr)
		}
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	log.Printf("[DeviceAuth] OTP sent to %s", normalized)
	return normalized, nil
}

// verifyStatus is the OTP comparison outcome. The transaction must commit
// for every outcome (attempt increments and purges persist even when the
// caller sees a failure), so the callback reports status instead of
// returning an error.
type verifyStatus int

const (
	verifyOK verifyStatus = iota
	verifyNotFound
	verifyExpired
	verifyExhausted
	verifyMismatch
)

type verifyOutcome struct {
	status    verifyStatus
	remaining int
	creds     *domain.DeviceCredentials
	franchise domain.Franchise
}

// VerifyOTP checks the candidate code and, on match, consumes the record
// and upserts the franchise — all in one transaction, so a consumed OTP
// without a paired franchise cannot happen.
func (s *DeviceAuthService) VerifyOTP(req *domain.VerifyOTPRequest) (*domain.DeviceCredentials, error) {
	normalized, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	outcome := &verifyOutcome{}
	_, err = s.store.TransactRetry(func(doc *domain.Document) (*store.MutationResult, error) {
		outcome.verify(doc, normalized, req, s.maxAttempts)
		if outcome.status != verifyOK {
			return &store.MutationResult{}, nil
		}
		action := "DEVICE_LOGIN"
		if outcome.creds.IsNewPartner {
			action = "DEVICE_REGISTER"
		}
		return &store.MutationResult{
			Audit: &store.AuditEntry{
				Action:  action,
				Details: map[string]string{"phone": normalized, "deviceId": outcome.creds.DeviceID},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	switch outcome.status {
	case verifyNotFound:
		return nil, ErrOTPNotFound
	case verifyExpired:
		return nil, ErrOTPExpired
	case verifyExhausted:
		return nil, ErrOTPExhausted
	case verifyMismatch:
		return nil, &OTPMismatchError{Remaining: outcome.remaining}
	}

	s.monitor.NotifyDeviceStatus(outcome.creds.DeviceID, outcome.creds.PartnerName,
		string(domain.StatusOnline), outcome.franchise.LastSync)
	return outcome.creds, nil
}

func (o *verifyOutcome) verify(doc *domain.Document, phone string, req *domain.VerifyOTPRequest, maxAttempts int) {
	stored, ok := doc.OTPTokens[phone]
	if !ok {
		o.status = verifyNotFound
		return
	}

	now := time.Now()
	if now.After(stored.ExpiresAt) {
		delete(doc.OTPTokens, phone)
		o.status = verifyExpired
		return
	}
	// Guard for records persisted by versions that purged one call late.
	if stored.Attempts >= maxAttempts {
		delete(doc.OTPTokens, phone)
		o.status = verifyExhausted
		return
	}
	if stored.OTP != req.OTP {
		stored.Attempts++
		if stored.Attempts >= maxAttempts {
			delete(doc.OTPTokens, phone)
		} else {
			doc.OTPTokens[phone] = stored
		}
		o.status = verifyMismatch
		o.remaining = maxAttempts - stored.Attempts
		return
	}

	// Single use: the code is gone whatever happens next in this commit.
	delete(doc.OTPTokens, phone)

	nowUTC := now.UTC()
	if existing := doc.FranchiseByPhone(phone); existing != nil {
		existing.LastLogin = &nowUTC
		existing.LastSync = &nowUTC
		existing.Status = domain.StatusOnline
		if req.DeviceName != "" {
			existing.Name = req.DeviceName
		}
		if req.Location != "" {
			existing.Location = req.Location
		}
		o.status = verifyOK
		o.franchise = *existing
		o.creds = &domain.DeviceCredentials{
			DeviceToken:  existing.Token,
			DeviceID:     existing.DeviceID,
			PartnerID:    existing.ID,
			PartnerName:  existing.Name,
			Location:     existing.Location,
			IsNewPartner: false,
		}
		return
	}

	name := req.DeviceName
	if name == "" {
		name = fmt.Sprintf("Partner %s", phone[len(phone)-4:])
	}
	location := req.Location
	if location == "" {
		location = "Not specified"
	}

	franchise := domain.Franchise{
		ID:            uuid.New().String(),
		Name:          name,
		Location:      location,
		DeviceID:      generateDeviceID(),
		Token:         uuid.New().String(),
		Phone:         phone,
		Status:        domain.StatusOnline,
		PlaybackOrder: domain.PlaybackSequential,
		AuthMethod:    "phone_otp",
		LastSync:      &nowUTC,
		LastLogin:     &nowUTC,
		CreatedAt:     nowUTC,
	}
	doc.Franchises = append(doc.Franchises, franchise)

	o.status = verifyOK
	o.franchise = franchise
	o.creds = &domain.DeviceCredentials{
		DeviceToken:  franchise.Token,
		DeviceID:     franchise.DeviceID,
		PartnerID:    franchise.ID,
		PartnerName:  franchise.Name,
		Location:     franchise.Location,
		IsNewPartner: true,
	}
}

// CheckStatus reports whether a phone already maps to a registered partner.
func (s *DeviceAuthService) CheckStatus(phone string) (*domain.PairingStatus, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if franchise := doc.FranchiseByPhone(normalized); franchise != nil {
		return &domain.PairingStatus{IsRegistered: true, PartnerName: franchise.Name}, nil
	}
	return &domain.PairingStatus{IsRegistered: false}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func generateDeviceID() string {
	return fmt.Sprintf("DEV-%s", strings.ToUpper(big.NewInt(time.Now().UnixMilli()).Text(36)))
}
