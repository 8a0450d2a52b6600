package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

var orderClauses = map[string]string{
	"timestamp DESC": "timestamp DESC, seq DESC",
	"timestamp ASC":  "timestamp ASC, seq ASC",
}

// GormEventRepository implements history.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM history event repository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Save persists events in order inside one transaction
func (r *GormEventRepository) Save(ctx context.Context, events []*history.Event) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]*HistoryEventModel, len(events))
	for i, e := range events {
		model, err := r.eventToModel(e)
		if err != nil {
			return fmt.Errorf("failed to convert event to model: %w", err)
		}
		models[i] = model
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range models {
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to save history event %s: %w", model.ID, err)
			}
		}
		return nil
	})
}

// FindByID retrieves an event by its ID
func (r *GormEventRepository) FindByID(ctx context.Context, id history.EventID, player shared.PlayerID) (*history.Event, error) {
	var model HistoryEventModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND player = ?", id.String(), player.Value()).
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &history.ErrEventNotFound{
				ID:     id.String(),
				Player: player.Value(),
			}
		}
		return nil, fmt.Errorf("failed to find history event: %w", result.Error)
	}

	return r.modelToEvent(&model)
}

// FindByPlayer retrieves events for a player with optional filtering
func (r *GormEventRepository) FindByPlayer(ctx context.Context, player shared.PlayerID, opts history.QueryOptions) ([]*history.Event, error) {
	query := r.db.WithContext(ctx).Where("player = ?", player.Value())
	query = r.applyFilters(query, opts)

	orderBy := "timestamp DESC"
	if opts.OrderBy != "" {
		orderBy = opts.OrderBy
	}
	clause, ok := orderClauses[orderBy]
	if !ok {
		return nil, fmt.Errorf("unsupported order: %s", orderBy)
	}
	query = query.Order(clause)

	// Apply pagination
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []HistoryEventModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find history events: %w", err)
	}

	events := make([]*history.Event, len(models))
	for i := range models {
		e, err := r.modelToEvent(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert history event model: %w", err)
		}
		events[i] = e
	}
	return events, nil
}

// CountByPlayer returns the count of events matching the criteria
func (r *GormEventRepository) CountByPlayer(ctx context.Context, player shared.PlayerID, opts history.QueryOptions) (int, error) {
	query := r.db.WithContext(ctx).Model(&HistoryEventModel{}).Where("player = ?", player.Value())
	query = r.applyFilters(query, opts)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count history events: %w", err)
	}
	return int(count), nil
}

func (r *GormEventRepository) applyFilters(query *gorm.DB, opts history.QueryOptions) *gorm.DB {
	if opts.StartDate != nil {
		query = query.Where("timestamp >= ?", *opts.StartDate)
	}
	if opts.EndDate != nil {
		query = query.Where("timestamp <= ?", *opts.EndDate)
	}
	if opts.EventType != nil {
		query = query.Where("event_type = ?", opts.EventType.String())
	}
	if opts.Region != nil {
		query = query.Where("region = ?", *opts.Region)
	}
	return query
}

func (r *GormEventRepository) modelToEvent(model *HistoryEventModel) (*history.Event, error) {
	id, err := history.NewEventIDFromString(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID in database: %w", err)
	}

	player, err := shared.NewPlayerID(model.Player)
	if err != nil {
		return nil, fmt.Errorf("invalid player in database: %w", err)
	}

	eventType, err := history.ParseEventType(model.EventType)
	if err != nil {
		return nil, fmt.Errorf("invalid event type in database: %w", err)
	}

	var unitIDs []string
	if model.UnitIDs != "" {
		if err := json.Unmarshal([]byte(model.UnitIDs), &unitIDs); err != nil {
			return nil, fmt.Errorf("invalid unit ids in database: %w", err)
		}
	}

	var parentID *history.EventID
	if model.ParentID != nil {
		pid, err := history.NewEventIDFromString(*model.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent ID in database: %w", err)
		}
		parentID = &pid
	}

	return history.ReconstructEvent(
		id,
		player,
		model.Timestamp,
		eventType,
		model.Region,
		model.Description,
		unitIDs,
		parentID,
	), nil
}

func (r *GormEventRepository) eventToModel(e *history.Event) (*HistoryEventModel, error) {
	unitIDs, err := json.Marshal(e.UnitIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unit ids: %w", err)
	}

	model := &HistoryEventModel{
		ID:          e.ID().String(),
		Player:      e.Player().Value(),
		Timestamp:   e.Timestamp(),
		EventType:   e.Type().String(),
		Region:      e.Region(),
		Description: e.Description(),
		UnitIDs:     string(unitIDs),
	}
	if parent := e.ParentID(); parent != nil {
		pid := parent.String()
		model.ParentID = &pid
	}
	return model, nil
}

var _ history.EventRepository = (*GormEventRepository)(nil)
