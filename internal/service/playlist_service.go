package service

import (
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
)

// PlaylistService turns a device's raw assignment list into the concrete,
// ordered, URL-correct playlist the device plays. Resolution is read-only
// over a loaded document copy.
type PlaylistService struct {
	store *store.Store
}

func NewPlaylistService(st *store.Store) *PlaylistService {
	return &PlaylistService{store: st}
}

// Resolve builds the playlist for deviceID. baseURL is the requesting
// connection's externally reachable address ("https://host:port"); every
// resolved item's delivery URL is rewritten onto it.
//
// Dangling references (deleted content, deleted folders, folder members
// that no longer exist) are dropped silently; only an unknown deviceID is
// an error. Under random playback the whole flattened list is reshuffled
// on every call; nothing about the order persists.
func (s *PlaylistService) Resolve(deviceID, baseURL string) (*domain.PlaylistResponse, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	franchise := doc.FranchiseByDeviceID(deviceID)
	if franchise == nil {
		return nil, fmt.Errorf("partner: %w", ErrNotFound)
	}

	playlist := expand(doc, doc.Assignments[deviceID])

	order := franchise.EffectivePlaybackOrder()
	if order == domain.PlaybackRandom {
		rand.Shuffle(len(playlist), func(i, j int) {
			playlist[i], playlist[j] = playlist[j], playlist[i]
		})
	}

	for i := range playlist {
		playlist[i].URL = RewriteURL(playlist[i].URL, baseURL)
	}

	return &domain.PlaylistResponse{
		DeviceID:      deviceID,
		PartnerName:   franchise.Name,
		Location:      franchise.Location,
		PlaybackOrder: order,
		Playlist:      playlist,
		PlaylistCount: len(playlist),
		LastUpdated:   time.Now().UTC(),
	}, nil
}

// expand flattens assignment items into content records: content items
// resolve directly, folder items splice their members in stored order at
// the folder's position.
func expand(doc *domain.Document, items []domain.AssignmentItem) []domain.Content {
	playlist := make([]domain.Content, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case domain.ItemFolder:
			folder := doc.FolderByID(item.ID)
			if folder == nil {
				continue
			}
			for _, contentID := range folder.ContentIDs {
				if content := doc.ContentByID(contentID); content != nil {
					playlist = append(playlist, *content)
				}
			}
		case domain.ItemContent:
			if content := doc.ContentByID(item.ID); content != nil {
				playlist = append(playlist, *content)
			}
		}
	}
	return playlist
}

// RewriteURL swaps the scheme and host/port of a stored content URL for the
// requesting context's, preserving path and filename. Content records bake
// in the serving address at upload time; this keeps playback working after
// the address changes (reverse proxy, tunnel, redeploy). Rewriting onto the
// same host is a no-op.
func RewriteURL(stored, baseURL string) string {
	if baseURL == "" {
		return stored
	}
	storedURL, err := url.Parse(stored)
	if err != nil {
		return stored
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return stored
	}
	storedURL.Scheme = base.Scheme
	storedURL.Host = base.Host
	return storedURL.String()
}
