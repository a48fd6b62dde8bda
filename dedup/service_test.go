package dedup

import (
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"github.com/google/uuid"
)

func orderedIds(n int) []uuid.UUID {
	// uuids that sort in creation order, so expected member order is stable
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.MustParse(fmt.Sprintf("%08d-0000-0000-0000-000000000000", i))
	}
	return ids
}

func TestClusterPairs_TransitiveGrouping(t *testing.T) {
	ids := orderedIds(3)
	a, b, c := ids[0], ids[1], ids[2]

	groups := clusterPairs([]jobPair{
		{a: a, b: b, score: 0.9, reasons: []string{"90% semantic similarity"}},
		{a: b, b: c, score: 0.8, reasons: []string{"80% semantic similarity"}},
	})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	group := groups[0]
	if len(group.JobIds) != 3 {
		t.Fatalf("expected 3 members, got %d", len(group.JobIds))
	}
	for i, id := range ids {
		if group.JobIds[i] != id {
			t.Fatalf("expected sorted members %v, got %v", ids, group.JobIds)
		}
	}
	if group.Confidence != 0.9 {
		t.Fatalf("expected group confidence 0.9 (max pair score), got %v", group.Confidence)
	}
}

func TestClusterPairs_SeparateComponentsSortedByConfidence(t *testing.T) {
	ids := orderedIds(4)

	groups := clusterPairs([]jobPair{
		{a: ids[0], b: ids[1], score: 0.78, reasons: []string{"78% semantic similarity"}},
		{a: ids[2], b: ids[3], score: 0.95, reasons: []string{"95% semantic similarity"}},
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Confidence != 0.95 || groups[1].Confidence != 0.78 {
		t.Fatalf("expected groups sorted by confidence descending, got %v then %v",
			groups[0].Confidence, groups[1].Confidence)
	}
	if len(groups[0].JobIds) != 2 || len(groups[1].JobIds) != 2 {
		t.Fatalf("expected 2 members per group, got %d and %d", len(groups[0].JobIds), len(groups[1].JobIds))
	}
}

func TestClusterPairs_ReasonsDedupedAndCapped(t *testing.T) {
	ids := orderedIds(2)
	pair := func(reasons ...string) jobPair {
		return jobPair{a: ids[0], b: ids[1], score: 0.8, reasons: reasons}
	}

	groups := clusterPairs([]jobPair{
		pair("80% semantic similarity", "Identical job names", "Identical job names"),
		pair("Same job type: Roofing", "Shared customer(s)", "Shared company(s)", "Shared tags: metal"),
	})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	reasons := groups[0].MatchReasons
	if len(reasons) != maxGroupReasons {
		t.Fatalf("expected reasons capped at %d, got %d: %v", maxGroupReasons, len(reasons), reasons)
	}
	seen := map[string]bool{}
	for _, reason := range reasons {
		if seen[reason] {
			t.Fatalf("duplicate reason %q in %v", reason, reasons)
		}
		seen[reason] = true
	}
}

func TestClusterPairs_NoPairsNoGroups(t *testing.T) {
	if groups := clusterPairs(nil); groups != nil {
		t.Fatalf("expected no groups, got %v", groups)
	}
}

func TestUnionFind_Components(t *testing.T) {
	ids := orderedIds(5)
	uf := newUnionFind()
	uf.union(ids[0], ids[1])
	uf.union(ids[1], ids[2])
	uf.union(ids[3], ids[4])

	components := uf.components()
	if len(components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(components))
	}
	if uf.find(ids[0]) != uf.find(ids[2]) {
		t.Fatal("expected transitive union to share a root")
	}
	if uf.find(ids[0]) == uf.find(ids[3]) {
		t.Fatal("expected disjoint pairs to keep separate roots")
	}
}

func TestSharedTags_CaseInsensitiveAndSorted(t *testing.T) {
	shared := sharedTags(
		[]string{"Metal", "roofing", "Metal", "solar"},
		[]string{"METAL", "Roofing", "gutter"},
	)
	if len(shared) != 2 {
		t.Fatalf("expected 2 shared tags, got %v", shared)
	}
	if shared[0] != "Metal" || shared[1] != "roofing" {
		t.Fatalf("expected sorted [Metal roofing] keeping the first job's casing, got %v", shared)
	}
}

func TestMatchReasons_NamesTypesLinksAndTags(t *testing.T) {
	aId, bId := orderedIds(2)[0], orderedIds(2)[1]
	customerId := uuid.New()

	s := &Service{
		linksCache: map[uuid.UUID]map[models.LinkEntityType]map[uuid.UUID]struct{}{
			aId: {models.LinkEntityTypeCustomer: {customerId: {}}},
			bId: {models.LinkEntityTypeCustomer: {customerId: {}}},
		},
	}
	a := &models.Job{ID: aId, JobName: "Riverside Plaza", JobType: "Roofing", Tags: []string{"metal", "commercial"}}
	b := &models.Job{ID: bId, JobName: "riverside plaza", JobType: "Roofing", Tags: []string{"Metal", "commercial", "rush"}}

	reasons, err := s.matchReasons(a, b, 0.876)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{
		"88% semantic similarity",
		"Identical job names",
		"Same job type: Roofing",
		"Shared customer(s)",
		"Shared tags: commercial, metal",
	}
	if len(reasons) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, reasons)
	}
	for i := range expected {
		if reasons[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, reasons)
		}
	}
}

func TestMatchReasons_SubstringNamesAreSimilar(t *testing.T) {
	aId, bId := uuid.New(), uuid.New()
	s := &Service{linksCache: map[uuid.UUID]map[models.LinkEntityType]map[uuid.UUID]struct{}{
		aId: {}, bId: {},
	}}
	a := &models.Job{ID: aId, JobName: "Riverside Plaza"}
	b := &models.Job{ID: bId, JobName: "Riverside Plaza Phase 2"}

	reasons, err := s.matchReasons(a, b, 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, reason := range reasons {
		if reason == "Similar job names" {
			found = true
		}
		if reason == "Identical job names" {
			t.Fatalf("substring names must not count as identical: %v", reasons)
		}
	}
	if !found {
		t.Fatalf("expected a similar-names reason, got %v", reasons)
	}
}
