package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingVersion is baked into every stored vector's payload. Bumping it
// forces a global re-embed on the next scan.
const EmbeddingVersion = 1

type Job struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	JobName               string    `gorm:"size:255;not null;index" json:"job_name" binding:"required"`
	JobType               string    `gorm:"size:255;default:null" json:"job_type"`
	Description           string    `gorm:"type:text;default:null" json:"description"`
	StructuralDetails     string    `gorm:"type:text;default:null" json:"structural_details"`
	StructuralInformation string    `gorm:"type:text;default:null" json:"structural_information"`
	AdditionalInformation string    `gorm:"type:text;default:null" json:"additional_information"`
	Tags                  []string  `gorm:"type:text[];serializer:json" json:"tags"`
	Status                JobStatus `gorm:"type:varchar(32);not null;default:'Bidding'" json:"status"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// JobEmbedding caches which vector is stored for a job. TextHash is the
// SHA-256 of the job's canonical text; a mismatch means the vector is stale.
type JobEmbedding struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	JobId            uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"job_id"`
	EmbeddingVersion int       `gorm:"not null" json:"embedding_version"`
	TextHash         string    `gorm:"size:64;not null" json:"text_hash"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ConfirmedDifferentJob records human feedback that two jobs are NOT
// duplicates. The pair is stored with JobId1 < JobId2 so a vote survives
// swapping the arguments.
type ConfirmedDifferentJob struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	JobId1        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_confirmed_pair" json:"job_id_1"`
	JobId2        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_confirmed_pair" json:"job_id_2"`
	ConfirmedById uuid.UUID `gorm:"type:uuid;not null" json:"confirmed_by_id"`
	Reason        string    `gorm:"type:text;default:null" json:"reason"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type JobCompanyLink struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	JobId     uuid.UUID      `gorm:"type:uuid;index;not null" json:"job_id"`
	CompanyId uuid.UUID      `gorm:"type:uuid;index;not null" json:"company_id"`
	Role      JobCompanyRole `gorm:"type:varchar(32);not null" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

type NewJob struct {
	JobName               string    `json:"job_name" validate:"required"`
	JobType               string    `json:"job_type"`
	Description           string    `json:"description"`
	StructuralDetails     string    `json:"structural_details"`
	StructuralInformation string    `json:"structural_information"`
	AdditionalInformation string    `json:"additional_information"`
	Tags                  []string  `json:"tags"`
	Status                JobStatus `json:"status"`
}

// CanonicalText builds the deterministic labelled concatenation used as the
// embedding input and the cache-hash source. Empty fields are omitted; the
// label order is fixed.
func (j *Job) CanonicalText() string {
	var lines []string
	fields := []struct {
		label string
		value string
	}{
		{"Job Name", j.JobName},
		{"Description", j.Description},
		{"Structural Details", j.StructuralDetails},
		{"Structural Information", j.StructuralInformation},
		{"Additional Information", j.AdditionalInformation},
		{"Job Type", j.JobType},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		lines = append(lines, f.label+": "+f.value)
	}
	return strings.Join(lines, "\n")
}

// TextHash is the SHA-256 hex digest of the canonical text.
func (j *Job) TextHash() string {
	sum := sha256.Sum256([]byte(j.CanonicalText()))
	return hex.EncodeToString(sum[:])
}

func (j Job) GetId() uuid.UUID {
	return j.ID
}

// CanonicalJobPair orders two job ids so that the smaller one comes first.
func CanonicalJobPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

func GetJobById(tx *gorm.DB, id uuid.UUID) (*Job, error) {
	var job Job
	if err := tx.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindJobsForScan returns scan candidates, optionally filtered by status
// list and a created-within-days window.
func FindJobsForScan(tx *gorm.DB, statuses []JobStatus, createdWithinDays int) ([]*Job, error) {
	dbCtx := tx.Model(&Job{})
	if len(statuses) > 0 {
		dbCtx = dbCtx.Where("status IN ?", statuses)
	}
	if createdWithinDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -createdWithinDays)
		dbCtx = dbCtx.Where("created_at >= ?", cutoff)
	}
	var jobs []*Job
	if err := dbCtx.Order("created_at").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func GetJobEmbeddings(tx *gorm.DB, jobIds []uuid.UUID) (map[uuid.UUID]*JobEmbedding, error) {
	var rows []*JobEmbedding
	if err := tx.Where("job_id IN ?", jobIds).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]*JobEmbedding, len(rows))
	for _, row := range rows {
		result[row.JobId] = row
	}
	return result, nil
}

// UpsertJobEmbedding records the stored vector's hash and version for a job.
func UpsertJobEmbedding(tx *gorm.DB, jobId uuid.UUID, textHash string, version int) error {
	row := JobEmbedding{JobId: jobId, TextHash: textHash, EmbeddingVersion: version}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text_hash", "embedding_version", "updated_at"}),
	}).Create(&row).Error
}

// ConfirmDifferentJobs stores a human "not duplicates" vote under the
// canonical pair ordering.
func ConfirmDifferentJobs(tx *gorm.DB, jobId1, jobId2, confirmedById uuid.UUID, reason string) error {
	a, b := CanonicalJobPair(jobId1, jobId2)
	row := ConfirmedDifferentJob{JobId1: a, JobId2: b, ConfirmedById: confirmedById, Reason: reason}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// GetConfirmedDifferentPairs loads the whole override table into a set keyed
// by the canonical "<id1>|<id2>" pair string.
func GetConfirmedDifferentPairs(tx *gorm.DB) (map[string]struct{}, error) {
	var rows []*ConfirmedDifferentJob
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	pairs := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		pairs[row.JobId1.String()+"|"+row.JobId2.String()] = struct{}{}
	}
	return pairs, nil
}

// IsConfirmedDifferent answers the membership question for one pair,
// regardless of argument order.
func IsConfirmedDifferent(pairs map[string]struct{}, a, b uuid.UUID) bool {
	x, y := CanonicalJobPair(a, b)
	_, ok := pairs[x.String()+"|"+y.String()]
	return ok
}
