package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/repos"
	"github.com/ecoba/alumni-backend/internal/sse"
	"github.com/ecoba/alumni-backend/internal/types"
)

// ErrScanInProgress is returned when another scan holds the lock.
var ErrScanInProgress = errors.New("a scan is already in progress")

const (
	scanLockTTL       = 10 * time.Minute
	searchConcurrency = 4
)

// ScanLock is the subset of the redis lease the pipeline needs.
type ScanLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

type ScanService interface {
	Scan(ctx context.Context, query string, platforms []types.Platform) (*types.ScanResult, error)
	History(ctx context.Context, limit int) ([]*types.ScanHistory, error)
}

type scanService struct {
	db          *gorm.DB
	log         *logger.Logger
	policy      ScanPolicy
	search      SearchClient
	ai          AIClient
	classifier  Classifier
	alumniRepo  repos.AlumniRecordRepo
	historyRepo repos.ScanHistoryRepo
	notifier    NotificationService
	hub         *sse.SSEHub
	lock        ScanLock
}

func NewScanService(
	db *gorm.DB,
	log *logger.Logger,
	policy ScanPolicy,
	search SearchClient,
	ai AIClient,
	classifier Classifier,
	alumniRepo repos.AlumniRecordRepo,
	historyRepo repos.ScanHistoryRepo,
	notifier NotificationService,
	hub *sse.SSEHub,
	lock ScanLock,
) ScanService {
	return &scanService{
		db:          db,
		log:         log.With("service", "ScanService"),
		policy:      policy,
		search:      search,
		ai:          ai,
		classifier:  classifier,
		alumniRepo:  alumniRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		hub:         hub,
		lock:        lock,
	}
}

type subQuery struct {
	platform types.Platform
	query    string
}

type platformResult struct {
	platform types.Platform
	result   SearchResult
}

// Scan runs the full discovery pipeline: expand the query per
// platform, retrieve, dedup by URL, classify each unique result,
// accept sufficiently-confident alumni, and persist the non-duplicate
// ones. An empty query is a valid "find everything" scan. Only
// configuration errors and a fully failed retrieval abort the run;
// everything else degrades to fewer results.
func (ss *scanService) Scan(ctx context.Context, query string, platforms []types.Platform) (*types.ScanResult, error) {
	if !ss.search.Configured() {
		return nil, fmt.Errorf("search provider not configured")
	}
	if !ss.ai.Configured() {
		return nil, fmt.Errorf("AI provider not configured")
	}

	if len(platforms) == 0 {
		platforms = types.AllPlatforms()
	}

	if ss.lock != nil {
		ok, err := ss.lock.Acquire(ctx, scanLockTTL)
		if err != nil {
			ss.log.Warn("Scan lock unavailable, continuing without it", "error", err)
		} else if !ok {
			return nil, ErrScanInProgress
		} else {
			defer func() {
				_ = ss.lock.Release(context.Background())
			}()
		}
	}

	run := ss.startRun(ctx, platforms)
	ss.broadcast(sse.SSEEventScanStarted, map[string]any{"query": query, "platforms": platforms})

	subQueries := ss.buildSubQueries(query, platforms)
	flat, searched, failed := ss.retrieve(ctx, subQueries)

	if searched == 0 && failed > 0 {
		err := fmt.Errorf("all %d search sub-queries failed", failed)
		ss.failRun(ctx, run, err)
		return nil, err
	}

	if len(flat) == 0 {
		result := &types.ScanResult{Profiles: []types.ClassifiedProfile{}, Message: "No results found"}
		ss.completeRun(ctx, run, 0)
		ss.broadcast(sse.SSEEventScanCompleted, result)
		return result, nil
	}

	unique := dedupeByURL(flat)
	ss.log.Info("Retrieved search results", "total", len(flat), "unique", len(unique), "failed_subqueries", failed)

	profiles := ss.classifyAll(ctx, unique)
	inserted := ss.persist(ctx, profiles)

	result := &types.ScanResult{
		Profiles:   profiles,
		Message:    fmt.Sprintf("Found %d potential alumni", len(profiles)),
		NewRecords: inserted,
	}

	ss.completeRun(ctx, run, inserted)
	ss.notifyScanComplete(ctx, len(profiles), inserted)
	ss.broadcast(sse.SSEEventScanCompleted, result)

	ss.log.Info("Scan complete", "profiles", len(profiles), "new_records", inserted)
	return result, nil
}

func (ss *scanService) History(ctx context.Context, limit int) ([]*types.ScanHistory, error) {
	return ss.historyRepo.ListRecent(ctx, nil, limit)
}

// buildSubQueries expands the operator query into one provider query
// per platform/site combination. News fans out across the configured
// news domains; Web broadens the keyword set instead of restricting.
func (ss *scanService) buildSubQueries(query string, platforms []types.Platform) []subQuery {
	clause := ss.policy.KeywordClause()
	query = strings.TrimSpace(query)

	base := clause
	if query != "" {
		base += " " + query
	}

	out := make([]subQuery, 0, len(platforms))
	for _, platform := range platforms {
		switch platform {
		case types.PlatformNews:
			for _, domain := range ss.policy.NewsDomains {
				out = append(out, subQuery{
					platform: platform,
					query:    base + " alumni site:" + domain,
				})
			}
		case types.PlatformWeb:
			broadened := base
			for _, kw := range ss.policy.ExtraKeywords {
				broadened += " " + `"` + kw + `"`
			}
			out = append(out, subQuery{platform: platform, query: broadened})
		default:
			q := base + " alumni"
			if site, ok := ss.policy.SiteFor(platform); ok {
				q += " site:" + site
			}
			out = append(out, subQuery{platform: platform, query: q})
		}
	}
	return out
}

// retrieve fans the sub-queries out with bounded parallelism. Result
// order is fixed to sub-query order then provider order, so dedup is
// deterministic no matter which call finishes first. A failed
// sub-query is logged and skipped, never fatal on its own.
func (ss *scanService) retrieve(ctx context.Context, subQueries []subQuery) ([]platformResult, int, int) {
	slots := make([][]SearchResult, len(subQueries))
	var succeeded, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, sq := range subQueries {
		g.Go(func() error {
			results, err := ss.search.Search(gctx, sq.query, ss.policy.ResultLimit)
			if err != nil {
				ss.log.Warn("Search sub-query failed", "platform", sq.platform, "error", err)
				failed.Add(1)
				return nil
			}
			succeeded.Add(1)
			slots[i] = results
			return nil
		})
	}
	_ = g.Wait()

	flat := make([]platformResult, 0)
	for i, sq := range subQueries {
		for _, r := range slots[i] {
			flat = append(flat, platformResult{platform: sq.platform, result: r})
		}
	}
	return flat, int(succeeded.Load()), int(failed.Load())
}

// dedupeByURL keeps the first occurrence of each URL.
func dedupeByURL(results []platformResult) []platformResult {
	seen := make(map[string]bool, len(results))
	out := make([]platformResult, 0, len(results))
	for _, pr := range results {
		url := strings.TrimSpace(pr.result.URL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		out = append(out, pr)
	}
	return out
}

// classifyAll runs the per-result LLM classification sequentially so
// rate-limit backoff inside the AI client stays meaningful. Quota
// exhaustion abandons the remaining results but keeps everything
// accepted so far.
func (ss *scanService) classifyAll(ctx context.Context, unique []platformResult) []types.ClassifiedProfile {
	profiles := make([]types.ClassifiedProfile, 0, len(unique))

	for _, pr := range unique {
		content := contentBlob(pr.result)
		if len(content) < ss.policy.MinContentLength {
			ss.log.Debug("Skipping result, insufficient content", "url", pr.result.URL)
			continue
		}

		cls, err := ss.classifier.Classify(ctx, pr.result.URL, content)
		if err != nil {
			if errors.Is(err, ErrQuotaExhausted) {
				ss.log.Warn("AI quota exhausted, stopping classification", "classified", len(profiles))
				break
			}
			ss.log.Warn("Classification failed, skipping result", "url", pr.result.URL, "error", err)
			continue
		}

		if !cls.IsAlumni || cls.ConfidenceScore < ss.policy.MinConfidence {
			ss.log.Debug("Result rejected",
				"url", pr.result.URL,
				"is_alumni", cls.IsAlumni,
				"confidence", cls.ConfidenceScore,
			)
			continue
		}

		platform := pr.platform
		if platform == "" {
			platform = ss.inferPlatform(pr.result.URL)
		}

		profiles = append(profiles, types.ClassifiedProfile{
			FullName:          cls.FullName,
			Status:            cls.Status,
			GraduationYear:    cls.GraduationYear,
			Occupation:        cls.Occupation,
			Company:           cls.Company,
			Platform:          platform,
			ProfileURL:        pr.result.URL,
			Location:          cls.Location,
			ConfidenceScore:   types.ClampConfidence(cls.ConfidenceScore),
			SourceAttribution: fmt.Sprintf("Found via web search on %s", time.Now().UTC().Format("2006-01-02")),
			MatchedKeywords:   cls.MatchedKeywords,
			Bio:               cls.Bio,
		})
		ss.log.Info("Accepted profile", "name", cls.FullName, "confidence", cls.ConfidenceScore)
	}

	return profiles
}

// inferPlatform falls back to URL-pattern matching when the search
// stage lost the platform context.
func (ss *scanService) inferPlatform(rawURL string) types.Platform {
	url := strings.ToLower(rawURL)
	switch {
	case strings.Contains(url, "linkedin"):
		return types.PlatformLinkedIn
	case strings.Contains(url, "facebook"):
		return types.PlatformFacebook
	case strings.Contains(url, "twitter"), strings.Contains(url, "x.com"):
		return types.PlatformTwitter
	case strings.Contains(url, "instagram"):
		return types.PlatformInstagram
	}
	if strings.Contains(url, "news") {
		return types.PlatformNews
	}
	for _, domain := range ss.policy.NewsDomains {
		if strings.Contains(url, strings.ToLower(domain)) {
			return types.PlatformNews
		}
	}
	return types.PlatformWeb
}

// persist inserts each accepted candidate unless its profile URL is
// already stored. Duplicates and per-row failures are logged and
// skipped; the scan still succeeds.
func (ss *scanService) persist(ctx context.Context, profiles []types.ClassifiedProfile) int {
	inserted := 0
	for i := range profiles {
		record := profiles[i].Record()
		created, err := ss.alumniRepo.CreateIfAbsent(ctx, nil, record)
		if err != nil {
			ss.log.Warn("Failed to insert profile", "url", record.ProfileURL, "error", err)
			continue
		}
		if !created {
			ss.log.Debug("Profile already exists, skipping", "url", record.ProfileURL)
			continue
		}
		inserted++

		if ss.notifier != nil {
			recordID := record.ID
			notifErr := ss.notifier.Notify(ctx, &types.Notification{
				Title:           "New alumni record",
				Message:         fmt.Sprintf("%s discovered on %s", record.FullName, record.Platform),
				Type:            types.NotificationNewRecord,
				RelatedRecordID: &recordID,
			})
			if notifErr != nil {
				ss.log.Warn("Failed to create record notification", "error", notifErr)
			}
		}
		ss.broadcast(sse.SSEEventAlumniRecordCreated, record)
	}
	return inserted
}

func (ss *scanService) startRun(ctx context.Context, platforms []types.Platform) *types.ScanHistory {
	raw, err := json.Marshal(platforms)
	if err != nil {
		raw = []byte("[]")
	}
	run := &types.ScanHistory{
		StartedAt:        time.Now(),
		Status:           types.ScanStatusRunning,
		PlatformsScanned: raw,
	}
	if ss.historyRepo == nil {
		return run
	}
	if err := ss.historyRepo.Create(ctx, nil, run); err != nil {
		// Audit is best-effort; a scan is never blocked on it.
		ss.log.Warn("Failed to record scan start", "error", err)
	}
	return run
}

func (ss *scanService) completeRun(ctx context.Context, run *types.ScanHistory, recordsFound int) {
	if ss.historyRepo == nil {
		return
	}
	if err := ss.historyRepo.MarkCompleted(ctx, nil, run.ID, recordsFound); err != nil {
		ss.log.Warn("Failed to finalize scan history", "error", err)
	}
}

func (ss *scanService) failRun(ctx context.Context, run *types.ScanHistory, cause error) {
	ss.broadcast(sse.SSEEventScanFailed, map[string]any{"error": cause.Error()})
	if ss.historyRepo == nil {
		return
	}
	if err := ss.historyRepo.MarkFailed(ctx, nil, run.ID, cause.Error()); err != nil {
		ss.log.Warn("Failed to record scan failure", "error", err)
	}
}

func (ss *scanService) notifyScanComplete(ctx context.Context, found, inserted int) {
	if ss.notifier == nil {
		return
	}
	err := ss.notifier.Notify(ctx, &types.Notification{
		Title:   "Scan complete",
		Message: fmt.Sprintf("Found %d potential alumni, %d new", found, inserted),
		Type:    types.NotificationScanComplete,
	})
	if err != nil {
		ss.log.Warn("Failed to create scan notification", "error", err)
	}
}

func (ss *scanService) broadcast(event sse.SSEEvent, data any) {
	if ss.hub == nil {
		return
	}
	ss.hub.Broadcast(sse.SSEMessage{Channel: sse.ChannelScan, Event: event, Data: data})
}

func contentBlob(r SearchResult) string {
	parts := make([]string, 0, 3)
	if strings.TrimSpace(r.Title) != "" {
		parts = append(parts, r.Title)
	}
	if strings.TrimSpace(r.Snippet) != "" {
		parts = append(parts, r.Snippet)
	}
	parts = append(parts, r.URL)
	return strings.Join(parts, "\n")
}
