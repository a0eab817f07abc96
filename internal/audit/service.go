package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"gorm.io/gorm"
)

type Entry struct {
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Recorder stores audit entries. Mutating services call it after a change
// has been committed.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type DBRecorder struct {
	db *gorm.DB
}

func NewDBRecorder(db *gorm.DB) *DBRecorder {
	return &DBRecorder{db: db}
}

func (r *DBRecorder) Record(ctx context.Context, e Entry) error {
	row := BuildLog(e)
	row.RequestID = logger.RequestIDFrom(ctx)

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("audit log could not be saved: %w", err)
	}
	return nil
}

// BuildLog turns e into a row. Postgres jsonb rejects empty strings, so a
// missing before/after state is stored as the JSON literal null.
func BuildLog(e Entry) models.AuditLog {
	return models.AuditLog{
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		Description: e.Description,
		BeforeData:  toJSON(e.Before),
		AfterData:   toJSON(e.After),
	}
}

func toJSON(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
