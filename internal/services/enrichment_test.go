package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"coolpress/internal/models"
)

func coolUser(email string) *models.CoolUser {
	return &models.CoolUser{
		ID:     1,
		UserID: 1,
		User: models.User{
			ID:       1,
			Username: "oscar",
			Email:    email,
		},
	}
}

func newTestEnrichment(gravatarURL, githubURL string) *EnrichmentService {
	os.Setenv("GRAVATAR_BASE_URL", gravatarURL)
	os.Setenv("GITHUB_BASE_URL", githubURL)
	return NewEnrichmentService()
}

func TestGravatarImageLink(t *testing.T) {
	s := newTestEnrichment("https://www.gravatar.com", "https://github.com")

	// Known vector from the gravatar docs: trailing space and mixed case
	// must not change the hash.
	got := s.GravatarImageLink("MyEmailAddress@example.com ")
	want := "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestRefreshGravatar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestEnrichment(server.URL, "https://github.com")
	cu := coolUser("oscar@example.com")

	s.RefreshGravatar(cu)

	if cu.GravatarLink == nil {
		t.Fatal("Expected gravatar link to be set")
	}
	want := server.URL + "/avatar/" + emailHash("oscar@example.com")
	if *cu.GravatarLink != want {
		t.Errorf("Expected %s, got %s", want, *cu.GravatarLink)
	}
	if cu.GravatarUpdatedAt == nil {
		t.Error("Expected gravatar refresh timestamp to be set")
	}
}

func TestRefreshGravatarKeepsPriorValueOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestEnrichment(server.URL, "https://github.com")

	prior := "https://example.com/old-avatar"
	cu := coolUser("oscar@example.com")
	cu.GravatarLink = &prior

	s.RefreshGravatar(cu)

	if cu.GravatarLink == nil || *cu.GravatarLink != prior {
		t.Errorf("Expected prior link to survive a failed lookup, got %v", cu.GravatarLink)
	}

	// Never set stays unset, not zeroed to something else.
	fresh := coolUser("oscar@example.com")
	s.RefreshGravatar(fresh)
	if fresh.GravatarLink != nil {
		t.Errorf("Expected no link after a failed lookup, got %v", *fresh.GravatarLink)
	}
}

func TestRefreshGravatarNoEmail(t *testing.T) {
	s := newTestEnrichment("https://www.gravatar.com", "https://github.com")
	cu := coolUser("")

	s.RefreshGravatar(cu)

	if cu.GravatarLink != nil || cu.GravatarUpdatedAt != nil {
		t.Error("Expected no enrichment without an email")
	}
}

const profileHTML = `<html><body>
<nav class="UnderlineNav-body">
  <a href="/oscar?tab=repositories">Repositories <span class="Counter">42</span></a>
  <a href="/oscar?tab=stars">Stars <span class="Counter">1,337</span></a>
</nav>
</body></html>`

func TestRefreshGithubStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, profileHTML)
	}))
	defer server.Close()

	s := newTestEnrichment("https://www.gravatar.com", server.URL)
	cu := coolUser("oscar@example.com")
	profile := "oscar"
	cu.GithubProfile = &profile

	s.RefreshGithubStats(cu)

	if cu.GithubRepos == nil || *cu.GithubRepos != 42 {
		t.Errorf("Expected 42 repos, got %v", cu.GithubRepos)
	}
	if cu.GithubStars == nil || *cu.GithubStars != 1337 {
		t.Errorf("Expected 1337 stars, got %v", cu.GithubStars)
	}
	if cu.LastGithubCheck == nil {
		t.Error("Expected the check timestamp to advance on success")
	}
}

func TestRefreshGithubStatsOncePerDay(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, profileHTML)
	}))
	defer server.Close()

	s := newTestEnrichment("https://www.gravatar.com", server.URL)
	cu := coolUser("oscar@example.com")
	profile := "oscar"
	cu.GithubProfile = &profile

	s.RefreshGithubStats(cu)
	if hits != 1 {
		t.Fatalf("Expected 1 fetch, got %d", hits)
	}

	repos, stars := *cu.GithubRepos, *cu.GithubStars

	// Second save the same day: no fetch, counts unchanged.
	s.RefreshGithubStats(cu)
	if hits != 1 {
		t.Errorf("Expected the daily gate to suppress a second fetch, got %d fetches", hits)
	}
	if *cu.GithubRepos != repos || *cu.GithubStars != stars {
		t.Error("Expected counts to stay unchanged on a gated save")
	}

	// A stale check date allows a new fetch.
	yesterday := time.Now().AddDate(0, 0, -1)
	cu.LastGithubCheck = &yesterday
	s.RefreshGithubStats(cu)
	if hits != 2 {
		t.Errorf("Expected a stale check date to trigger a fetch, got %d fetches", hits)
	}
}

func TestRefreshGithubStatsMissingCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><nav><a href="/oscar?tab=repositories">Repositories</a></nav></body></html>`)
	}))
	defer server.Close()

	s := newTestEnrichment("https://www.gravatar.com", server.URL)
	cu := coolUser("oscar@example.com")
	profile := "oscar"
	cu.GithubProfile = &profile

	s.RefreshGithubStats(cu)

	if cu.GithubRepos != nil || cu.GithubStars != nil {
		t.Error("Expected counts untouched when the counter nodes are absent")
	}
	if cu.LastGithubCheck != nil {
		t.Error("Expected no CheckedToday transition without a successful scrape")
	}
}

func TestRefreshGithubStatsFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	s := newTestEnrichment("https://www.gravatar.com", server.URL)
	cu := coolUser("oscar@example.com")
	profile := "oscar"
	cu.GithubProfile = &profile
	oldRepos := 7
	cu.GithubRepos = &oldRepos

	s.RefreshGithubStats(cu)

	if cu.GithubRepos == nil || *cu.GithubRepos != 7 {
		t.Errorf("Expected prior repo count to survive a failed fetch, got %v", cu.GithubRepos)
	}
}

func TestParseCounter(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{"1,337", 1337, false},
		{"3.2k", 3200, false},
		{"lots", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := parseCounter(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseCounter(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseCounter(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseCounter(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
