package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinkRelation is a polymorphic bidirectional edge between any two entities.
// Lookups merge both directions.
type LinkRelation struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SourceType LinkEntityType `gorm:"type:varchar(32);not null;index:idx_link_source;index:idx_link_four,priority:1" json:"source_type"`
	SourceId   uuid.UUID      `gorm:"type:uuid;not null;index:idx_link_source;index:idx_link_four,priority:2" json:"source_id"`
	TargetType LinkEntityType `gorm:"type:varchar(32);not null;index:idx_link_target;index:idx_link_four,priority:3" json:"target_type"`
	TargetId   uuid.UUID      `gorm:"type:uuid;not null;index:idx_link_target;index:idx_link_four,priority:4" json:"target_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// LinkedEntity is one endpoint of a merged bidirectional lookup.
type LinkedEntity struct {
	EntityType LinkEntityType
	EntityId   uuid.UUID
}

// GetLinkedEntities returns all entities linked to the given one from
// either direction.
func GetLinkedEntities(tx *gorm.DB, entityType LinkEntityType, entityId uuid.UUID) ([]LinkedEntity, error) {
	var outgoing []*LinkRelation
	if err := tx.Where("source_type = ? AND source_id = ?", entityType, entityId).
		Find(&outgoing).Error; err != nil {
		return nil, err
	}
	var incoming []*LinkRelation
	if err := tx.Where("target_type = ? AND target_id = ?", entityType, entityId).
		Find(&incoming).Error; err != nil {
		return nil, err
	}

	seen := make(map[LinkedEntity]struct{}, len(outgoing)+len(incoming))
	var result []LinkedEntity
	for _, link := range outgoing {
		e := LinkedEntity{EntityType: link.TargetType, EntityId: link.TargetId}
		if _, ok := seen[e]; !ok {
			seen[e] = struct{}{}
			result = append(result, e)
		}
	}
	for _, link := range incoming {
		e := LinkedEntity{EntityType: link.SourceType, EntityId: link.SourceId}
		if _, ok := seen[e]; !ok {
			seen[e] = struct{}{}
			result = append(result, e)
		}
	}
	return result, nil
}

func CreateLinkRelation(tx *gorm.DB, sourceType LinkEntityType, sourceId uuid.UUID, targetType LinkEntityType, targetId uuid.UUID) error {
	link := LinkRelation{
		SourceType: sourceType,
		SourceId:   sourceId,
		TargetType: targetType,
		TargetId:   targetId,
	}
	return tx.Create(&link).Error
}

// DeleteAllLinkRelationsFor removes every edge touching the given entity,
// from either side.
func DeleteAllLinkRelationsFor(tx *gorm.DB, entityType LinkEntityType, entityId uuid.UUID) error {
	return tx.
		Where("(source_type = ? AND source_id = ?) OR (target_type = ? AND target_id = ?)",
			entityType, entityId, entityType, entityId).
		Delete(&LinkRelation{}).Error
}

// DeleteLinkRelations removes edges between two entities in both directions.
func DeleteLinkRelations(tx *gorm.DB, aType LinkEntityType, aId uuid.UUID, bType LinkEntityType, bId uuid.UUID) error {
	return tx.
		Where("(source_type = ? AND source_id = ? AND target_type = ? AND target_id = ?)"+
			" OR (source_type = ? AND source_id = ? AND target_type = ? AND target_id = ?)",
			aType, aId, bType, bId,
			bType, bId, aType, aId).
		Delete(&LinkRelation{}).Error
}
