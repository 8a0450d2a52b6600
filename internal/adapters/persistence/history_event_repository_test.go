package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/adapters/persistence"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/test/helpers"
)

var (
	germany = shared.MustNewPlayerID("Germany")
	base    = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
)

func newEvent(t *testing.T, player shared.PlayerID, at time.Time, eventType history.EventType, region, desc string, ids ...string) *history.Event {
	t.Helper()
	e, err := history.NewEvent(player, at, eventType, region, desc, ids)
	require.NoError(t, err)
	return e
}

func TestEventRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormEventRepository(db)
	placed := newEvent(t, germany, base, history.EventTypePlacement, "Baltic Sea", "1 carrier placed in Baltic Sea", "carrier-001")
	moved := newEvent(t, germany, base, history.EventTypeAirRelocation, "Baltic Sea", "2 fighter moved from Germany to Baltic Sea", "fighter-002", "fighter-003")
	moved.AttachTo(placed)

	// Act
	err := repo.Save(context.Background(), []*history.Event{placed, moved})
	require.NoError(t, err)
	found, err := repo.FindByID(context.Background(), moved.ID(), germany)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, moved.Description(), found.Description())
	assert.Equal(t, history.EventTypeAirRelocation, found.Type())
	assert.Equal(t, []string{"fighter-002", "fighter-003"}, found.UnitIDs())
	require.NotNil(t, found.ParentID())
	assert.True(t, found.ParentID().Equals(placed.ID()))
	assert.True(t, found.Timestamp().Equal(base))
}

func TestEventRepository_NotFound(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormEventRepository(db)

	// Act
	_, err := repo.FindByID(context.Background(), history.NewEventID(), germany)

	// Assert
	var notFound *history.ErrEventNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestEventRepository_FindByPlayer(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormEventRepository(db)
	events := []*history.Event{
		newEvent(t, germany, base, history.EventTypePlacement, "Germany", "first", "infantry-001"),
		newEvent(t, germany, base, history.EventTypeConsumption, "Germany", "second", "infantry-002"),
		newEvent(t, germany, base.Add(time.Minute), history.EventTypeUndo, "Germany", "third", "infantry-001"),
		newEvent(t, germany, base.Add(2*time.Minute), history.EventTypePlacement, "Baltic Sea", "fourth", "carrier-003"),
		newEvent(t, shared.MustNewPlayerID("Russia"), base, history.EventTypePlacement, "Russia", "other", "armour-004"),
	}
	require.NoError(t, repo.Save(context.Background(), events))
	placement := history.EventTypePlacement
	baltic := "Baltic Sea"
	later := base.Add(30 * time.Second)

	tests := []struct {
		name      string
		opts      history.QueryOptions
		wantDescs []string
		wantCount int
	}{
		{
			name:      "newest first, ties newest written first",
			opts:      history.DefaultQueryOptions(),
			wantDescs: []string{"fourth", "third", "second", "first"},
			wantCount: 4,
		},
		{
			name:      "oldest first",
			opts:      history.QueryOptions{OrderBy: "timestamp ASC"},
			wantDescs: []string{"first", "second", "third", "fourth"},
			wantCount: 4,
		},
		{
			name:      "by type",
			opts:      history.QueryOptions{EventType: &placement, OrderBy: "timestamp ASC"},
			wantDescs: []string{"first", "fourth"},
			wantCount: 2,
		},
		{
			name:      "by region",
			opts:      history.QueryOptions{Region: &baltic},
			wantDescs: []string{"fourth"},
			wantCount: 1,
		},
		{
			name:      "from a date",
			opts:      history.QueryOptions{StartDate: &later, OrderBy: "timestamp ASC"},
			wantDescs: []string{"third", "fourth"},
			wantCount: 2,
		},
		{
			name:      "paginated",
			opts:      history.QueryOptions{Limit: 2, Offset: 1, OrderBy: "timestamp ASC"},
			wantDescs: []string{"second", "third"},
			wantCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			found, err := repo.FindByPlayer(context.Background(), germany, tt.opts)
			require.NoError(t, err)
			count, err := repo.CountByPlayer(context.Background(), germany, tt.opts)
			require.NoError(t, err)

			// Assert
			descs := make([]string, len(found))
			for i, e := range found {
				descs[i] = e.Description()
			}
			assert.Equal(t, tt.wantDescs, descs)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestEventRepository_RejectsUnknownOrder(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormEventRepository(db)

	// Act
	_, err := repo.FindByPlayer(context.Background(), germany, history.QueryOptions{OrderBy: "description; DROP TABLE history_events"})

	// Assert
	assert.Error(t, err)
}
