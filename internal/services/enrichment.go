package services

import (
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"coolpress/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// EnrichmentService augments author profiles with externally sourced
// metadata: a gravatar image link derived from the email, and repository /
// star counts scraped from the author's GitHub profile page. Everything is
// best effort; a failed fetch leaves the previous values in place and never
// propagates an error into the save path that triggered it.
type EnrichmentService struct {
	client       *http.Client
	gravatarBase string
	githubBase   string
}

func NewEnrichmentService() *EnrichmentService {
	gravatarBase := os.Getenv("GRAVATAR_BASE_URL")
	if gravatarBase == "" {
		gravatarBase = "https://www.gravatar.com"
	}
	githubBase := os.Getenv("GITHUB_BASE_URL")
	if githubBase == "" {
		githubBase = "https://github.com"
	}

	return &EnrichmentService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		gravatarBase: strings.TrimSuffix(gravatarBase, "/"),
		githubBase:   strings.TrimSuffix(githubBase, "/"),
	}
}

var (
	enrichmentService *EnrichmentService
	enrichmentOnce    sync.Once
)

// GetEnrichmentService returns the singleton enrichment service.
func GetEnrichmentService() *EnrichmentService {
	enrichmentOnce.Do(func() {
		enrichmentService = NewEnrichmentService()
	})
	return enrichmentService
}

// emailHash is the gravatar identity: hex md5 of the trimmed, lowercased email.
func emailHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// GravatarImageLink derives the avatar URL for an email. Pure, no network.
func (s *EnrichmentService) GravatarImageLink(email string) string {
	return s.gravatarBase + "/avatar/" + emailHash(email)
}

// GravatarProfileURL derives the profile URL checked before linking.
func (s *EnrichmentService) GravatarProfileURL(email string) string {
	return s.gravatarBase + "/" + emailHash(email)
}

// RefreshGravatar recomputes the avatar link when the account has an email
// and the avatar service confirms a profile exists. On any failure the
// previous link is kept.
func (s *EnrichmentService) RefreshGravatar(cu *models.CoolUser) {
	email := cu.User.Email
	if email == "" {
		return
	}

	resp, err := s.client.Get(s.GravatarProfileURL(email))
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}

	link := s.GravatarImageLink(email)
	now := time.Now()
	cu.GravatarLink = &link
	cu.GravatarUpdatedAt = &now
}

// checkedToday compares at calendar-day granularity.
func checkedToday(last *time.Time) bool {
	if last == nil {
		return false
	}
	y1, m1, d1 := last.Date()
	y2, m2, d2 := time.Now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// RefreshGithubStats scrapes repository and star counts from the author's
// GitHub profile page, at most once per calendar day. The counters sit in
// the profile navigation; markup changes or a blocked fetch are expected
// misses and leave the fields untouched. The check timestamp only advances
// on a successful scrape, so a failed attempt is retried on the next save.
func (s *EnrichmentService) RefreshGithubStats(cu *models.CoolUser) {
	if cu.GithubProfile == nil || *cu.GithubProfile == "" {
		return
	}
	if checkedToday(cu.LastGithubCheck) {
		return
	}

	profileURL := *cu.GithubProfile
	if !strings.HasPrefix(profileURL, "http") {
		profileURL = s.githubBase + "/" + strings.TrimPrefix(profileURL, "/")
	}

	req, err := http.NewRequest("GET", profileURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return
	}

	repos := counterValue(doc, `nav a[href$="tab=repositories"] span.Counter`)
	stars := counterValue(doc, `nav a[href$="tab=stars"] span.Counter`)
	if repos == nil && stars == nil {
		return
	}

	if repos != nil {
		cu.GithubRepos = repos
	}
	if stars != nil {
		cu.GithubStars = stars
	}
	now := time.Now()
	cu.LastGithubCheck = &now
}

// counterValue extracts the integer behind a counter badge, nil when the
// node is absent or its text doesn't parse.
func counterValue(doc *goquery.Document, selector string) *int {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}

	n, err := parseCounter(sel.Text())
	if err != nil {
		return nil
	}
	return &n
}

// parseCounter handles the formats GitHub renders: "42", "1,234", "3.2k".
func parseCounter(text string) (int, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))

	if strings.HasSuffix(text, "k") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(text, "k"), 64)
		if err != nil {
			return 0, err
		}
		return int(f * 1000), nil
	}

	return strconv.Atoi(text)
}

// EnrichUser runs both enrichment steps. Called from user save paths:
// signup, settings updates and ingestion. Never returns an error; the
// caller persists whatever fields were updated.
func (s *EnrichmentService) EnrichUser(cu *models.CoolUser) {
	s.RefreshGravatar(cu)
	s.RefreshGithubStats(cu)
}
