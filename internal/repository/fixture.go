package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

// Scenario is a named, tenant-scoped bundle of visits and visitors --
// a saved input set a caller can replay through solve() without resending
// the full payload over the wire every time. It is the thing a dispatcher
// means by "load yesterday's late-add scenario again".
type Scenario struct {
	ID        uuid.UUID      `json:"id"`
	OrgID     uuid.UUID      `json:"org_id"`
	Name      string         `json:"name"`
	Date      string         `json:"date"`
	Visits    []model.Visit  `json:"visits"`
	Visitors  []model.Visitor `json:"visitors"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ErrScenarioNotFound is returned when no scenario matches the requested
// org/name pair.
var ErrScenarioNotFound = errors.New("repository: scenario not found")

// FixtureStore persists Scenario rows in Postgres as JSONB columns. Visit
// and Visitor already carry full json tags for the HTTP API, so the store
// reuses those tags directly rather than mapping onto a parallel schema.
type FixtureStore struct {
	db DB
}

// NewFixtureStore builds a FixtureStore over an already-open connection or
// transaction.
func NewFixtureStore(db DB) *FixtureStore {
	return &FixtureStore{db: db}
}

// Save inserts a new scenario, or replaces the existing one for the same
// (org_id, name) pair.
func (s *FixtureStore) Save(ctx context.Context, sc *Scenario) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	visitsJSON, err := json.Marshal(sc.Visits)
	if err != nil {
		return fmt.Errorf("repository: marshal visits: %w", err)
	}
	visitorsJSON, err := json.Marshal(sc.Visitors)
	if err != nil {
		return fmt.Errorf("repository: marshal visitors: %w", err)
	}

	const query = `
		INSERT INTO fixture_scenarios (id, org_id, name, date, visits, visitors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (org_id, name) DO UPDATE
		SET date = EXCLUDED.date,
		    visits = EXCLUDED.visits,
		    visitors = EXCLUDED.visitors,
		    updated_at = now()
		RETURNING created_at, updated_at`

	row := s.db.QueryRowContext(ctx, query, sc.ID, sc.OrgID, sc.Name, sc.Date, visitsJSON, visitorsJSON)
	if err := row.Scan(&sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return fmt.Errorf("repository: save scenario: %w", err)
	}
	return nil
}

// Get loads a scenario by org and name.
func (s *FixtureStore) Get(ctx context.Context, orgID uuid.UUID, name string) (*Scenario, error) {
	const query = `
		SELECT id, org_id, name, date, visits, visitors, created_at, updated_at
		FROM fixture_scenarios
		WHERE org_id = $1 AND name = $2`

	row := s.db.QueryRowContext(ctx, query, orgID, name)
	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScenarioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: get scenario: %w", err)
	}
	return sc, nil
}

// List returns every scenario saved for an org, most recently updated
// first, optionally narrowed to names containing filter.Search.
func (s *FixtureStore) List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]*Scenario, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	const query = `
		SELECT id, org_id, name, date, visits, visitors, created_at, updated_at
		FROM fixture_scenarios
		WHERE org_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, orgID, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("repository: list scenarios: %w", err)
	}
	defer rows.Close()

	var out []*Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: scan scenario row: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Delete removes a scenario. It is not an error to delete one that does
// not exist.
func (s *FixtureStore) Delete(ctx context.Context, orgID uuid.UUID, name string) error {
	const query = `DELETE FROM fixture_scenarios WHERE org_id = $1 AND name = $2`
	_, err := s.db.ExecContext(ctx, query, orgID, name)
	if err != nil {
		return fmt.Errorf("repository: delete scenario: %w", err)
	}
	return nil
}

func scanScenario(row Scanner) (*Scenario, error) {
	var sc Scenario
	var visitsJSON, visitorsJSON []byte
	if err := row.Scan(&sc.ID, &sc.OrgID, &sc.Name, &sc.Date, &visitsJSON, &visitorsJSON, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(visitsJSON, &sc.Visits); err != nil {
		return nil, fmt.Errorf("unmarshal visits: %w", err)
	}
	if err := json.Unmarshal(visitorsJSON, &sc.Visitors); err != nil {
		return nil, fmt.Errorf("unmarshal visitors: %w", err)
	}
	return &sc, nil
}
