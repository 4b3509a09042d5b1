package domain

import "time"

// PlaylistResponse is the resolved, ordered playlist a device plays, with
// delivery URLs rewritten to the requesting connection's host.
type PlaylistResponse struct {
	DeviceID      string        `json:"deviceId"`
	PartnerName   string        `json:"partnerName"`
	Location      string        `json:"location"`
	PlaybackOrder PlaybackOrder `json:"playbackOrder"`
	Playlist      []Content     `json:"playlist"`
	PlaylistCount int           `json:"playlistCount"`
	LastUpdated   time.Time     `json:"lastUpdated"`
}
