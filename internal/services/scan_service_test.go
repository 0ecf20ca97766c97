package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/types"
)

type fakeSearchClient struct {
	configured bool
	// byQuerySubstring routes each sub-query to canned results; the
	// first matching key wins.
	byQuerySubstring map[string][]SearchResult
	err              error
	queries          []string
}

func (f *fakeSearchClient) Configured() bool { return f.configured }

func (f *fakeSearchClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	for sub, results := range f.byQuerySubstring {
		if strings.Contains(query, sub) {
			return results, nil
		}
	}
	return nil, nil
}

type fakeClassifier struct {
	byURL map[string]*Classification
	errs  map[string]error
	calls []string
}

func (f *fakeClassifier) Classify(ctx context.Context, sourceURL, content string) (*Classification, error) {
	f.calls = append(f.calls, sourceURL)
	if err, ok := f.errs[sourceURL]; ok {
		return nil, err
	}
	if cls, ok := f.byURL[sourceURL]; ok {
		return cls, nil
	}
	return &Classification{IsAlumni: false, Status: types.StatusUncertain}, nil
}

type fakeAlumniRepo struct {
	existing map[string]bool
	created  []*types.AlumniRecord
	err      error
}

func (f *fakeAlumniRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.AlumniRecord, error) {
	return f.created, nil
}

func (f *fakeAlumniRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *types.AlumniRecord) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	if f.existing[record.ProfileURL] {
		return false, nil
	}
	f.existing[record.ProfileURL] = true
	record.ID = uuid.New()
	f.created = append(f.created, record)
	return true, nil
}

func (f *fakeAlumniRepo) UpdateApproval(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, approved bool) error {
	return nil
}

func (f *fakeAlumniRepo) ProfileURLExists(ctx context.Context, tx *gorm.DB, profileURL string) (bool, error) {
	return f.existing[profileURL], nil
}

type fakeHistoryRepo struct {
	started   []*types.ScanHistory
	completed []int
	failed    []string
}

func (f *fakeHistoryRepo) Create(ctx context.Context, tx *gorm.DB, run *types.ScanHistory) error {
	run.ID = uuid.New()
	f.started = append(f.started, run)
	return nil
}

func (f *fakeHistoryRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, runID uuid.UUID, recordsFound int) error {
	f.completed = append(f.completed, recordsFound)
	return nil
}

func (f *fakeHistoryRepo) MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, message string) error {
	f.failed = append(f.failed, message)
	return nil
}

func (f *fakeHistoryRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ScanHistory, error) {
	return f.started, nil
}

type fakeNotifier struct {
	notifications []*types.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n *types.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotifier) ListRecent(ctx context.Context, limit int) ([]*types.Notification, error) {
	return f.notifications, nil
}

func (f *fakeNotifier) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeNotifier) MarkAllRead(ctx context.Context) error            { return nil }

type fakeScanLock struct {
	held     bool
	err      error
	released bool
}

func (f *fakeScanLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.held, nil
}

func (f *fakeScanLock) Release(ctx context.Context) error {
	f.released = true
	return nil
}

type scanFixture struct {
	search     *fakeSearchClient
	classifier *fakeClassifier
	alumni     *fakeAlumniRepo
	history    *fakeHistoryRepo
	notifier   *fakeNotifier
	lock       *fakeScanLock
	service    ScanService
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	f := &scanFixture{
		search:     &fakeSearchClient{configured: true},
		classifier: &fakeClassifier{byURL: map[string]*Classification{}, errs: map[string]error{}},
		alumni:     &fakeAlumniRepo{},
		history:    &fakeHistoryRepo{},
		notifier:   &fakeNotifier{},
		lock:       &fakeScanLock{},
	}
	f.service = NewScanService(
		nil,
		testLogger(t),
		DefaultScanPolicy(),
		f.search,
		&fakeAIClient{configured: true},
		f.classifier,
		f.alumni,
		f.history,
		f.notifier,
		nil,
		f.lock,
	)
	return f
}

func alumniClassification(name string, confidence int) *Classification {
	return &Classification{
		IsAlumni:        true,
		FullName:        name,
		ConfidenceScore: confidence,
		MatchedKeywords: []string{"Edo College"},
		Status:          types.StatusProbable,
	}
}

// longSnippet pads a snippet past the minimum content threshold.
func longSnippet(s string) string {
	return s + " " + strings.Repeat("alumni of Edo College in Benin City. ", 3)
}

func TestScanRequiresConfiguredProviders(t *testing.T) {
	f := newScanFixture(t)
	f.search.configured = false

	if _, err := f.service.Scan(context.Background(), "", nil); err == nil {
		t.Fatalf("want configuration error when search provider is missing")
	}

	f = newScanFixture(t)
	f.service = NewScanService(nil, testLogger(t), DefaultScanPolicy(),
		f.search, &fakeAIClient{configured: false}, f.classifier,
		f.alumni, f.history, f.notifier, nil, f.lock)

	if _, err := f.service.Scan(context.Background(), "", nil); err == nil {
		t.Fatalf("want configuration error when AI provider is missing")
	}
}

func TestScanRejectedWhileLockHeld(t *testing.T) {
	f := newScanFixture(t)
	f.lock.held = true

	_, err := f.service.Scan(context.Background(), "", nil)
	if !errors.Is(err, ErrScanInProgress) {
		t.Fatalf("want ErrScanInProgress, got: %v", err)
	}
}

func TestScanContinuesWhenLockUnavailable(t *testing.T) {
	f := newScanFixture(t)
	f.lock.err = fmt.Errorf("redis down")

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("lock transport failure must not abort the scan: %v", err)
	}
	if result.Message != "No results found" {
		t.Fatalf("message: want=%q got=%q", "No results found", result.Message)
	}
}

func TestScanEmptyResults(t *testing.T) {
	f := newScanFixture(t)

	result, err := f.service.Scan(context.Background(), "doctor", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message != "No results found" {
		t.Fatalf("message: want=%q got=%q", "No results found", result.Message)
	}
	if len(result.Profiles) != 0 {
		t.Fatalf("profiles: want=0 got=%d", len(result.Profiles))
	}
	if len(f.history.completed) != 1 || f.history.completed[0] != 0 {
		t.Fatalf("run must complete with zero records, got %v", f.history.completed)
	}
}

func TestScanDeduplicatesByURL(t *testing.T) {
	f := newScanFixture(t)
	shared := SearchResult{
		URL:     "https://linkedin.com/in/shared",
		Title:   "Shared profile",
		Snippet: longSnippet("appears under two sub-queries"),
	}
	f.search.byQuerySubstring = map[string][]SearchResult{
		"site:linkedin.com": {shared},
		"site:facebook.com": {shared},
	}
	f.classifier.byURL[shared.URL] = alumniClassification("Shared Person", 75)

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformLinkedIn, types.PlatformFacebook})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.classifier.calls) != 1 {
		t.Fatalf("classifier calls: want=1 got=%d (%v)", len(f.classifier.calls), f.classifier.calls)
	}
	if len(result.Profiles) != 1 {
		t.Fatalf("profiles: want=1 got=%d", len(result.Profiles))
	}
	if result.Profiles[0].Platform != types.PlatformLinkedIn {
		t.Fatalf("first occurrence wins: want=%q got=%q", types.PlatformLinkedIn, result.Profiles[0].Platform)
	}
}

func TestScanRejectsBelowThreshold(t *testing.T) {
	f := newScanFixture(t)
	low := SearchResult{URL: "https://example.com/low", Title: "Low", Snippet: longSnippet("weak match")}
	high := SearchResult{URL: "https://example.com/high", Title: "High", Snippet: longSnippet("strong match")}
	f.search.byQuerySubstring = map[string][]SearchResult{
		"Benin City": {low, high},
	}
	f.classifier.byURL[low.URL] = alumniClassification("Low Confidence", 25)
	f.classifier.byURL[high.URL] = alumniClassification("High Confidence", 75)

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Profiles) != 1 {
		t.Fatalf("profiles: want=1 got=%d", len(result.Profiles))
	}
	if result.Profiles[0].FullName != "High Confidence" {
		t.Fatalf("accepted: want=%q got=%q", "High Confidence", result.Profiles[0].FullName)
	}
	if len(f.alumni.created) != 1 {
		t.Fatalf("persisted records: want=1 got=%d", len(f.alumni.created))
	}
}

func TestScanRejectsNonAlumni(t *testing.T) {
	f := newScanFixture(t)
	hit := SearchResult{URL: "https://example.com/other", Title: "Other", Snippet: longSnippet("different school")}
	f.search.byQuerySubstring = map[string][]SearchResult{"Benin City": {hit}}
	f.classifier.byURL[hit.URL] = &Classification{IsAlumni: false, ConfidenceScore: 90, Status: types.StatusUncertain}

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Profiles) != 0 {
		t.Fatalf("non-alumni must not be accepted regardless of confidence, got %d", len(result.Profiles))
	}
}

func TestScanClampsConfidence(t *testing.T) {
	f := newScanFixture(t)
	hit := SearchResult{URL: "https://example.com/over", Title: "Over", Snippet: longSnippet("very strong")}
	f.search.byQuerySubstring = map[string][]SearchResult{"Benin City": {hit}}
	f.classifier.byURL[hit.URL] = alumniClassification("Over Confident", 140)

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Profiles[0].ConfidenceScore != 100 {
		t.Fatalf("confidence clamp: want=100 got=%d", result.Profiles[0].ConfidenceScore)
	}
}

func TestScanSkipsShortContent(t *testing.T) {
	f := newScanFixture(t)
	short := SearchResult{URL: "https://example.com/short", Title: "x", Snippet: ""}
	f.search.byQuerySubstring = map[string][]SearchResult{"Benin City": {short}}

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.classifier.calls) != 0 {
		t.Fatalf("short results must not reach the classifier, got %d calls", len(f.classifier.calls))
	}
	if len(result.Profiles) != 0 {
		t.Fatalf("profiles: want=0 got=%d", len(result.Profiles))
	}
}

func TestScanStopsOnQuotaButKeepsAccepted(t *testing.T) {
	f := newScanFixture(t)
	first := SearchResult{URL: "https://example.com/a", Title: "A", Snippet: longSnippet("first")}
	second := SearchResult{URL: "https://example.com/b", Title: "B", Snippet: longSnippet("second")}
	third := SearchResult{URL: "https://example.com/c", Title: "C", Snippet: longSnippet("third")}
	f.search.byQuerySubstring = map[string][]SearchResult{"Benin City": {first, second, third}}
	f.classifier.byURL[first.URL] = alumniClassification("Accepted Before Quota", 80)
	f.classifier.errs[second.URL] = fmt.Errorf("chat completion: %w", ErrQuotaExhausted)

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("quota exhaustion must not fail the scan: %v", err)
	}

	if len(result.Profiles) != 1 || result.Profiles[0].FullName != "Accepted Before Quota" {
		t.Fatalf("accepted-so-far must survive quota stop, got %+v", result.Profiles)
	}
	if len(f.classifier.calls) != 2 {
		t.Fatalf("classification must stop at the quota error: want=2 calls got=%d", len(f.classifier.calls))
	}
	if len(f.alumni.created) != 1 {
		t.Fatalf("persisted records: want=1 got=%d", len(f.alumni.created))
	}
}

func TestScanSkipsExistingProfiles(t *testing.T) {
	f := newScanFixture(t)
	hit := SearchResult{URL: "https://linkedin.com/in/known", Title: "Known", Snippet: longSnippet("already stored")}
	f.search.byQuerySubstring = map[string][]SearchResult{"site:linkedin.com": {hit}}
	f.classifier.byURL[hit.URL] = alumniClassification("Known Person", 90)
	f.alumni.existing = map[string]bool{hit.URL: true}

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformLinkedIn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Profiles) != 1 {
		t.Fatalf("classified profiles: want=1 got=%d", len(result.Profiles))
	}
	if result.NewRecords != 0 {
		t.Fatalf("new records: want=0 got=%d", result.NewRecords)
	}
	if len(f.alumni.created) != 0 {
		t.Fatalf("duplicate must not be re-inserted")
	}
}

func TestScanFailsWhenAllSubQueriesFail(t *testing.T) {
	f := newScanFixture(t)
	f.search.err = fmt.Errorf("provider unreachable")

	_, err := f.service.Scan(context.Background(), "", nil)
	if err == nil {
		t.Fatalf("want error when every sub-query fails")
	}
	if len(f.history.failed) != 1 {
		t.Fatalf("run must be marked failed, got %v", f.history.failed)
	}
}

func TestScanNotifiesOnNewRecords(t *testing.T) {
	f := newScanFixture(t)
	hit := SearchResult{URL: "https://linkedin.com/in/fresh", Title: "Fresh", Snippet: longSnippet("new discovery")}
	f.search.byQuerySubstring = map[string][]SearchResult{"site:linkedin.com": {hit}}
	f.classifier.byURL[hit.URL] = alumniClassification("Fresh Person", 90)

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformLinkedIn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewRecords != 1 {
		t.Fatalf("new records: want=1 got=%d", result.NewRecords)
	}

	var newRecord, scanComplete int
	for _, n := range f.notifier.notifications {
		switch n.Type {
		case types.NotificationNewRecord:
			newRecord++
		case types.NotificationScanComplete:
			scanComplete++
		}
	}
	if newRecord != 1 || scanComplete != 1 {
		t.Fatalf("notifications: want 1 new_record and 1 scan_complete, got %d/%d", newRecord, scanComplete)
	}
	if !f.lock.released {
		t.Fatalf("scan lock must be released after a completed run")
	}
}

func TestScanRecordsSourceAttribution(t *testing.T) {
	f := newScanFixture(t)
	hit := SearchResult{URL: "https://example.com/attr", Title: "Attr", Snippet: longSnippet("attribution")}
	f.search.byQuerySubstring = map[string][]SearchResult{"Benin City": {hit}}
	f.classifier.byURL[hit.URL] = alumniClassification("Attributed", 70)

	result, err := f.service.Scan(context.Background(), "", []types.Platform{types.PlatformWeb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := fmt.Sprintf("Found via web search on %s", time.Now().UTC().Format("2006-01-02"))
	if got := result.Profiles[0].SourceAttribution; got != want {
		t.Fatalf("source attribution: want=%q got=%q", want, got)
	}
}

func TestBuildSubQueries(t *testing.T) {
	ss := &scanService{policy: DefaultScanPolicy()}

	queries := ss.buildSubQueries("doctor", []types.Platform{
		types.PlatformLinkedIn,
		types.PlatformNews,
		types.PlatformWeb,
	})

	// LinkedIn is one query, News fans out per configured domain, Web is
	// one broadened query.
	wantCount := 1 + len(ss.policy.NewsDomains) + 1
	if len(queries) != wantCount {
		t.Fatalf("sub-queries: want=%d got=%d", wantCount, len(queries))
	}

	clause := `"Edo College" OR "ECOBA" OR "Edo College Old Boys"`
	linkedIn := queries[0]
	if linkedIn.platform != types.PlatformLinkedIn {
		t.Fatalf("first platform: want LinkedIn got %s", linkedIn.platform)
	}
	if want := clause + " doctor alumni site:linkedin.com"; linkedIn.query != want {
		t.Fatalf("linkedin query:\nwant=%q\ngot =%q", want, linkedIn.query)
	}

	news := queries[1]
	if !strings.HasSuffix(news.query, "site:guardian.ng") {
		t.Fatalf("news query must target a news domain, got %q", news.query)
	}

	web := queries[len(queries)-1]
	if strings.Contains(web.query, "site:") {
		t.Fatalf("web query must not carry a site restriction, got %q", web.query)
	}
	if !strings.Contains(web.query, `"Benin City"`) {
		t.Fatalf("web query must be broadened with extra keywords, got %q", web.query)
	}
}

func TestInferPlatform(t *testing.T) {
	ss := &scanService{policy: DefaultScanPolicy()}

	cases := []struct {
		url  string
		want types.Platform
	}{
		{"https://www.linkedin.com/in/someone", types.PlatformLinkedIn},
		{"https://facebook.com/profile", types.PlatformFacebook},
		{"https://x.com/handle", types.PlatformTwitter},
		{"https://twitter.com/handle", types.PlatformTwitter},
		{"https://instagram.com/handle", types.PlatformInstagram},
		{"https://guardian.ng/article", types.PlatformNews},
		{"https://somewhere.example.com/page", types.PlatformWeb},
	}
	for _, tc := range cases {
		if got := ss.inferPlatform(tc.url); got != tc.want {
			t.Fatalf("inferPlatform(%q): want=%s got=%s", tc.url, tc.want, got)
		}
	}
}

func TestKeywordClause(t *testing.T) {
	got := DefaultScanPolicy().KeywordClause()
	want := `"Edo College" OR "ECOBA" OR "Edo College Old Boys"`
	if got != want {
		t.Fatalf("keyword clause:\nwant=%q\ngot =%q", want, got)
	}
}

func TestScanPolicyValidate(t *testing.T) {
	p := DefaultScanPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy must validate: %v", err)
	}

	p.InstitutionName = " "
	if err := p.Validate(); err == nil {
		t.Fatalf("want error for blank institution name")
	}

	p = DefaultScanPolicy()
	p.ProbableThreshold = 10
	if err := p.Validate(); err == nil {
		t.Fatalf("want error for unordered thresholds")
	}

	p = DefaultScanPolicy()
	p.ResultLimit = 0
	if err := p.Validate(); err == nil {
		t.Fatalf("want error for non-positive result limit")
	}
}
