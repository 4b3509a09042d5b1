// Package sms delivers pairing codes to phones. The MSG91 client is the
// production path; the console sender stands in when no auth key is
// configured so local development still surfaces the code.
package sms

// Sender dispatches a one-time code to a phone number in E.164-without-plus
// form (e.g. "919876543210").
type Sender interface {
	Send(phone, code string) error
}
