package service

import (
	"errors"
	"testing"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
)

func seedPlaylistFixture(t *testing.T, s *store.Store) {
	t.Helper()
	seed(t, s, func(doc *domain.Document) {
		doc.Franchises = append(doc.Franchises, domain.Franchise{
			ID:            "f1",
			Name:          "Koramangala",
			Location:      "Bengaluru",
			DeviceID:      "DEV-1",
			Token:         "tok-1",
			PlaybackOrder: domain.PlaybackSequential,
		})
		doc.Content = append(doc.Content,
			domain.Content{ID: "a", Name: "A", URL: "http://old-host:3000/content/a.mp4"},
			domain.Content{ID: "b", Name: "B", URL: "http://old-host:3000/content/b.jpg"},
			domain.Content{ID: "c", Name: "C", URL: "http://old-host:3000/content/c.jpg"},
			domain.Content{ID: "p", Name: "P", URL: "http://old-host:3000/content/p.mp4"},
			domain.Content{ID: "q", Name: "Q", URL: "http://old-host:3000/content/q.mp4"},
		)
		doc.Folders = append(doc.Folders, domain.Folder{
			ID:         "fo1",
			Name:       "Promos",
			ContentIDs: []string{"p", "q", "missing"},
		})
	})
}

func TestResolveSequentialOrder(t *testing.T) {
	s := newTestStore(t)
	seedPlaylistFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "a"},
			{Type: domain.ItemFolder, ID: "fo1"},
			{Type: domain.ItemContent, ID: "b"},
		}
	})

	svc := NewPlaylistService(s)
	resp, err := svc.Resolve("DEV-1", "https://new-host")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Folder members splice in at the folder's position; the dangling
	// member "missing" drops out.
	want := []string{"A", "P", "Q", "B"}
	if resp.PlaylistCount != len(want) {
		t.Fatalf("PlaylistCount = %d, want %d", resp.PlaylistCount, len(want))
	}
	for i, name := range want {
		if resp.Playlist[i].Name != name {
			t.Errorf("playlist[%d] = %s, want %s", i, resp.Playlist[i].Name, name)
		}
	}
	if got := resp.Playlist[0].URL; got != "https://new-host/content/a.mp4" {
		t.Errorf("playlist[0].URL = %s, want rewritten onto new-host", got)
	}
	if resp.PartnerName != "Koramangala" {
		t.Errorf("PartnerName = %s, want Koramangala", resp.PartnerName)
	}
}

func TestResolveDropsDanglingReferences(t *testing.T) {
	s := newTestStore(t)
	seedPlaylistFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "deleted-content"},
			{Type: domain.ItemFolder, ID: "deleted-folder"},
			{Type: domain.ItemContent, ID: "c"},
		}
	})

	svc := NewPlaylistService(s)
	resp, err := svc.Resolve("DEV-1", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.PlaylistCount != 1 || resp.Playlist[0].ID != "c" {
		t.Errorf("playlist = %+v, want only content c", resp.Playlist)
	}
}

func TestResolveUnknownDevice(t *testing.T) {
	s := newTestStore(t)
	seedPlaylistFixture(t, s)

	svc := NewPlaylistService(s)
	_, err := svc.Resolve("DEV-UNKNOWN", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveEmptyAssignments(t *testing.T) {
	s := newTestStore(t)
	seedPlaylistFixture(t, s)

	svc := NewPlaylistService(s)
	resp, err := svc.Resolve("DEV-1", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.PlaylistCount != 0 {
		t.Errorf("PlaylistCount = %d, want 0", resp.PlaylistCount)
	}
	if resp.Playlist == nil {
		t.Error("Playlist should be an empty slice, not nil")
	}
}

func TestResolveRandomIsPermutation(t *testing.T) {
	s := newTestStore(t)
	seedPlaylistFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Franchises[0].PlaybackOrder = domain.PlaybackRandom
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "a"},
			{Type: domain.ItemContent, ID: "b"},
			{Type: domain.ItemContent, ID: "c"},
			{Type: domain.ItemContent, ID: "p"},
			{Type: domain.ItemContent, ID: "q"},
		}
	})

	svc := NewPlaylistService(s)
	want := map[string]bool{"a": true, "b": true, "c": true, "p": true, "q": true}

	orders := make(map[string]bool)
	for i := 0; i < 50; i++ {
		resp, err := svc.Resolve("DEV-1", "")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(resp.Playlist) != len(want) {
			t.Fatalf("playlist length = %d, want %d", len(resp.Playlist), len(want))
		}
		key := ""
		seen := make(map[string]bool)
		for _, c := range resp.Playlist {
			if !want[c.ID] || seen[c.ID] {
				t.Fatalf("shuffle produced invalid permutation: %+v", resp.Playlist)
			}
			seen[c.ID] = true
			key += c.ID
		}
		orders[key] = true
	}

	// 50 shuffles of 5 items landing on a single order is (1/120)^49.
	if len(orders) < 2 {
		t.Error("random playback never produced a different order")
	}
}

func TestResolveRandomOrderUnbiased(t *testing.T) {
	s := newTestStore(t)
	seedPlaylistFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Franchises[0].PlaybackOrder = domain.PlaybackRandom
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "a"},
			{Type: domain.ItemContent, ID: "b"},
			{Type: domain.ItemContent, ID: "c"},
		}
	})

	svc := NewPlaylistService(s)

	const samples = 600
	counts := make(map[string]int)
	for i := 0; i < samples; i++ {
		resp, err := svc.Resolve("DEV-1", "")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(resp.Playlist) != 3 {
			t.Fatalf("playlist length = %d, want 3", len(resp.Playlist))
		}
		counts[resp.Playlist[0].ID+resp.Playlist[1].ID+resp.Playlist[2].ID]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d distinct orders of 3 items, want all 6: %v", len(counts), counts)
	}

	// Each of the 6 orders expects samples/6 = 100 hits with a standard
	// deviation of ~9; a count outside [55, 145] is five sigma out and
	// indicates the shuffle favors some permutations.
	for order, n := range counts {
		if n < 55 || n > 145 {
			t.Errorf("order %s occurred %d times over %d resolutions, want near %d", order, n, samples, samples/6)
		}
	}
}

func TestRewriteURL(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		baseURL string
		want    string
	}{
		{
			name:    "host and scheme swap",
			stored:  "http://old-host:3000/content/a.mp4",
			baseURL: "https://cdn.example.com",
			want:    "https://cdn.example.com/content/a.mp4",
		},
		{
			name:    "same host is a no-op",
			stored:  "https://cdn.example.com/content/a.mp4",
			baseURL: "https://cdn.example.com",
			want:    "https://cdn.example.com/content/a.mp4",
		},
		{
			name:    "port preserved from base",
			stored:  "http://localhost:3000/content/b.jpg",
			baseURL: "http://192.168.1.50:8080",
			want:    "http://192.168.1.50:8080/content/b.jpg",
		},
		{
			name:    "empty base returns stored",
			stored:  "http://old-host/content/a.mp4",
			baseURL: "",
			want:    "http://old-host/content/a.mp4",
		},
		{
			name:    "unparseable base returns stored",
			stored:  "http://old-host/content/a.mp4",
			baseURL: "://bad",
			want:    "http://old-host/content/a.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteURL(tt.stored, tt.baseURL); got != tt.want {
				t.Errorf("RewriteURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRewriteURLIdempotent(t *testing.T) {
	base := "https://cdn.example.com"
	once := RewriteURL("http://old-host:3000/content/a.mp4", base)
	twice := RewriteURL(once, base)
	if once != twice {
		t.Errorf("RewriteURL() not idempotent: %s vs %s", once, twice)
	}
}
