package domain

import "time"

// OTPToken is the pending pairing code for one phone number. The record is
// deleted on successful verification, on expiry, and when the attempt cap
// is reached; there is no terminal stored state.
type OTPToken struct {
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
}

type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type VerifyOTPRequest struct {
	Phone      string `json:"phone" validate:"required"`
	OTP        string `json:"otp" validate:"required,len=4,numeric"`
	DeviceName string `json:"deviceName"`
	Location   string `json:"location"`
}

// DeviceCredentials is the pairing result. DeviceToken is plaintext exactly
// here; the client must persist it, same guarantee as admin-issued tokens.
type DeviceCredentials struct {
	DeviceToken  string `json:"deviceToken"`
	DeviceID     string `json:"deviceId"`
	PartnerID    string `json:"partnerId"`
	PartnerName  string `json:"partnerName"`
	Location     string `json:"location"`
	IsNewPartner bool   `json:"isNewPartner"`
}

type PairingStatus struct {
	IsRegistered bool   `json:"isRegistered"`
	PartnerName  string `json:"partnerName,omitempty"`
}
