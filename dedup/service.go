package dedup

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/embedding"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/vectorstore"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// vectorDim matches the embedding provider's output dimension.
const vectorDim = 1024

const maxGroupReasons = 5

// DuplicateJobGroup is one connected component of probable duplicates.
type DuplicateJobGroup struct {
	JobIds       []uuid.UUID `json:"job_ids"`
	Confidence   float64     `json:"confidence"`
	MatchReasons []string    `json:"match_reasons"`
}

// SimilarJobResult is one neighbour in single-job mode.
type SimilarJobResult struct {
	JobId        uuid.UUID `json:"job_id"`
	Score        float64   `json:"score"`
	MatchReasons []string  `json:"match_reasons"`
}

type jobPair struct {
	a       uuid.UUID
	b       uuid.UUID
	score   float64
	reasons []string
}

// Service runs duplicate detection for one tenant. The links cache lives
// for the duration of one scan and is cleared on both ends.
type Service struct {
	db         *gorm.DB
	tenantId   string
	provider   embedding.Provider
	store      vectorstore.Store
	cfg        config.VectorConfig
	linksCache map[uuid.UUID]map[models.LinkEntityType]map[uuid.UUID]struct{}
}

func NewService(db *gorm.DB, tenantId string, provider embedding.Provider, store vectorstore.Store, cfg config.VectorConfig) *Service {
	return &Service{
		db:       db,
		tenantId: tenantId,
		provider: provider,
		store:    store,
		cfg:      cfg,
	}
}

func (s *Service) collection() string {
	return vectorstore.CollectionName(s.cfg.CollectionPrefix, s.tenantId)
}

// ScanForDuplicates runs the full pipeline over the tenant's job
// population and returns duplicate groups sorted by confidence descending.
// Provider or index failures abort the scan; nothing partial is persisted.
func (s *Service) ScanForDuplicates(ctx context.Context, statuses []models.JobStatus, createdWithinDays int) ([]DuplicateJobGroup, error) {
	s.linksCache = map[uuid.UUID]map[models.LinkEntityType]map[uuid.UUID]struct{}{}
	defer func() { s.linksCache = nil }()

	jobs, err := models.FindJobsForScan(s.db, statuses, createdWithinDays)
	if err != nil {
		return nil, err
	}
	if len(jobs) < 2 {
		return nil, nil
	}
	if err := s.refreshEmbeddings(ctx, jobs); err != nil {
		return nil, err
	}

	pairs, err := s.collectPairs(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return clusterPairs(pairs), nil
}

// FindSimilarJobs runs incremental detection for one job: no clustering,
// one result per surviving neighbour.
func (s *Service) FindSimilarJobs(ctx context.Context, jobId uuid.UUID) ([]SimilarJobResult, error) {
	s.linksCache = map[uuid.UUID]map[models.LinkEntityType]map[uuid.UUID]struct{}{}
	defer func() { s.linksCache = nil }()

	job, err := models.GetJobById(s.db, jobId)
	if err != nil {
		return nil, err
	}
	if err := s.refreshEmbeddings(ctx, []*models.Job{job}); err != nil {
		return nil, err
	}
	neighbours, err := s.neighboursOf(ctx, job)
	if err != nil {
		return nil, err
	}

	confirmed, err := models.GetConfirmedDifferentPairs(s.db)
	if err != nil {
		return nil, err
	}
	var results []SimilarJobResult
	for _, hit := range neighbours {
		if hit.Id == job.ID || models.IsConfirmedDifferent(confirmed, job.ID, hit.Id) {
			continue
		}
		other, err := models.GetJobById(s.db, hit.Id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}
		reasons, err := s.matchReasons(job, other, hit.Score)
		if err != nil {
			return nil, err
		}
		results = append(results, SimilarJobResult{
			JobId:        hit.Id,
			Score:        hit.Score,
			MatchReasons: reasons,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// refreshEmbeddings regenerates vectors for jobs whose canonical text hash
// or embedding version no longer matches the cache, in provider batches.
func (s *Service) refreshEmbeddings(ctx context.Context, jobs []*models.Job) error {
	jobIds := make([]uuid.UUID, len(jobs))
	for i, j := range jobs {
		jobIds[i] = j.ID
	}
	cached, err := models.GetJobEmbeddings(s.db, jobIds)
	if err != nil {
		return err
	}

	var dirty []*models.Job
	for _, job := range jobs {
		row, ok := cached[job.ID]
		if !ok || row.TextHash != job.TextHash() || row.EmbeddingVersion != models.EmbeddingVersion {
			dirty = append(dirty, job)
		}
	}
	if len(dirty) == 0 {
		return nil
	}

	if err := s.store.EnsureCollection(ctx, s.collection(), vectorDim); err != nil {
		return err
	}

	texts := make([]string, len(dirty))
	for i, job := range dirty {
		texts[i] = job.CanonicalText()
	}
	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(dirty) {
		return fmt.Errorf("embedding provider returned %d vectors for %d jobs", len(vectors), len(dirty))
	}

	points := make([]vectorstore.Point, len(dirty))
	for i, job := range dirty {
		points[i] = vectorstore.Point{
			Id:     job.ID,
			Vector: vectors[i],
			Payload: map[string]any{
				"job_id":            job.ID.String(),
				"tenant_id":         s.tenantId,
				"embedding_version": models.EmbeddingVersion,
			},
		}
	}
	if err := s.store.Upsert(ctx, s.collection(), points); err != nil {
		return err
	}
	for _, job := range dirty {
		if err := models.UpsertJobEmbedding(s.db, job.ID, job.TextHash(), models.EmbeddingVersion); err != nil {
			return err
		}
	}
	return nil
}

// neighboursOf queries the index around one job's vector. The stored
// vector is preferred; a failed or missing retrieval falls back to an
// on-the-fly embedding.
func (s *Service) neighboursOf(ctx context.Context, job *models.Job) ([]vectorstore.ScoredPoint, error) {
	var vector []float32
	point, err := s.store.Retrieve(ctx, s.collection(), job.ID)
	if err == nil && point != nil && len(point.Vector) > 0 {
		vector = point.Vector
	} else {
		vector, err = s.provider.EmbedQuery(ctx, job.CanonicalText())
		if err != nil {
			return nil, err
		}
	}
	return s.store.Query(ctx, s.collection(), vector, s.cfg.TopK+1, s.cfg.ScoreThreshold)
}

// collectPairs runs the similarity search per job and keeps the surviving
// canonical pairs with the best observed score.
func (s *Service) collectPairs(ctx context.Context, jobs []*models.Job) ([]jobPair, error) {
	confirmed, err := models.GetConfirmedDifferentPairs(s.db)
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*models.Job, len(jobs))
	for _, j := range jobs {
		byId[j.ID] = j
	}

	seen := map[string]int{}
	var pairs []jobPair
	for _, job := range jobs {
		hits, err := s.neighboursOf(ctx, job)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			if hit.Id == job.ID {
				continue
			}
			other, ok := byId[hit.Id]
			if !ok {
				continue
			}
			if models.IsConfirmedDifferent(confirmed, job.ID, hit.Id) {
				continue
			}
			a, b := models.CanonicalJobPair(job.ID, hit.Id)
			key := a.String() + "|" + b.String()
			if idx, ok := seen[key]; ok {
				if hit.Score > pairs[idx].score {
					pairs[idx].score = hit.Score
				}
				continue
			}
			reasons, err := s.matchReasons(job, other, hit.Score)
			if err != nil {
				return nil, err
			}
			seen[key] = len(pairs)
			pairs = append(pairs, jobPair{a: a, b: b, score: hit.Score, reasons: reasons})
		}
	}
	return pairs, nil
}

// matchReasons assembles the human-readable evidence for one pair.
func (s *Service) matchReasons(a, b *models.Job, score float64) ([]string, error) {
	reasons := []string{fmt.Sprintf("%d%% semantic similarity", int(math.Round(score*100)))}

	nameA := strings.ToLower(strings.TrimSpace(a.JobName))
	nameB := strings.ToLower(strings.TrimSpace(b.JobName))
	switch {
	case nameA != "" && nameA == nameB:
		reasons = append(reasons, "Identical job names")
	case nameA != "" && nameB != "" && (strings.Contains(nameA, nameB) || strings.Contains(nameB, nameA)):
		reasons = append(reasons, "Similar job names")
	}

	if a.JobType != "" && a.JobType == b.JobType {
		reasons = append(reasons, fmt.Sprintf("Same job type: %s", a.JobType))
	}

	sharedTypes, err := s.sharedLinkedEntityTypes(a.ID, b.ID)
	if err != nil {
		return nil, err
	}
	for _, entityType := range sharedTypes {
		reasons = append(reasons, fmt.Sprintf("Shared %s(s)", strings.ToLower(string(entityType))))
	}

	if shared := sharedTags(a.Tags, b.Tags); len(shared) > 0 {
		if len(shared) > 3 {
			shared = shared[:3]
		}
		reasons = append(reasons, "Shared tags: "+strings.Join(shared, ", "))
	}
	return reasons, nil
}

// sharedLinkedEntityTypes finds entity types (customer, contact, company)
// where both jobs link to at least one common entity. Lookups go through
// the per-scan cache so a scan touches each job's links once.
func (s *Service) sharedLinkedEntityTypes(aId, bId uuid.UUID) ([]models.LinkEntityType, error) {
	linksA, err := s.linkedEntities(aId)
	if err != nil {
		return nil, err
	}
	linksB, err := s.linkedEntities(bId)
	if err != nil {
		return nil, err
	}

	candidates := []models.LinkEntityType{
		models.LinkEntityTypeCustomer,
		models.LinkEntityTypeContact,
		models.LinkEntityTypeCompany,
	}
	var shared []models.LinkEntityType
	for _, entityType := range candidates {
		setA, okA := linksA[entityType]
		setB, okB := linksB[entityType]
		if !okA || !okB {
			continue
		}
		for id := range setA {
			if _, ok := setB[id]; ok {
				shared = append(shared, entityType)
				break
			}
		}
	}
	return shared, nil
}

func (s *Service) linkedEntities(jobId uuid.UUID) (map[models.LinkEntityType]map[uuid.UUID]struct{}, error) {
	if cached, ok := s.linksCache[jobId]; ok {
		return cached, nil
	}
	linked, err := models.GetLinkedEntities(s.db, models.LinkEntityTypeJob, jobId)
	if err != nil {
		return nil, err
	}
	result := map[models.LinkEntityType]map[uuid.UUID]struct{}{}
	for _, entity := range linked {
		set, ok := result[entity.EntityType]
		if !ok {
			set = map[uuid.UUID]struct{}{}
			result[entity.EntityType] = set
		}
		set[entity.EntityId] = struct{}{}
	}
	if s.linksCache != nil {
		s.linksCache[jobId] = result
	}
	return result, nil
}

func sharedTags(a, b []string) []string {
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	var shared []string
	for _, t := range utils.UniqueSlice(a) {
		if _, ok := setB[strings.ToLower(strings.TrimSpace(t))]; ok {
			shared = append(shared, t)
		}
	}
	sort.Strings(shared)
	return shared
}

// clusterPairs unions the surviving pairs into connected components and
// emits one group per component of size two or more, sorted by confidence
// descending.
func clusterPairs(pairs []jobPair) []DuplicateJobGroup {
	if len(pairs) == 0 {
		return nil
	}
	uf := newUnionFind()
	for _, p := range pairs {
		uf.union(p.a, p.b)
	}

	type clusterAgg struct {
		confidence float64
		reasons    []string
		seen       map[string]struct{}
	}
	clusters := map[uuid.UUID]*clusterAgg{}
	for _, p := range pairs {
		root := uf.find(p.a)
		agg, ok := clusters[root]
		if !ok {
			agg = &clusterAgg{seen: map[string]struct{}{}}
			clusters[root] = agg
		}
		if p.score > agg.confidence {
			agg.confidence = p.score
		}
		for _, reason := range p.reasons {
			if _, ok := agg.seen[reason]; ok {
				continue
			}
			if len(agg.reasons) >= maxGroupReasons {
				break
			}
			agg.seen[reason] = struct{}{}
			agg.reasons = append(agg.reasons, reason)
		}
	}

	var groups []DuplicateJobGroup
	for root, members := range uf.components() {
		if len(members) < 2 {
			continue
		}
		agg := clusters[root]
		if agg == nil {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].String() < members[j].String()
		})
		groups = append(groups, DuplicateJobGroup{
			JobIds:       members,
			Confidence:   agg.confidence,
			MatchReasons: agg.reasons,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Confidence > groups[j].Confidence })
	return groups
}
