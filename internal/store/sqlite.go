package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/models"
)

// SQLiteStore implements ConnectivityStore on a single SQLite file.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

var _ ConnectivityStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// SaveNetwork replaces the stored network with net in one transaction.
// A failure leaves the previously stored network in place.
func (s *SQLiteStore) SaveNetwork(ctx context.Context, net Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"plasticity_tags", "synapses", "synapse_groups", "populations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO config (key, value) VALUES ('timestep', ?)`,
		strconv.FormatFloat(net.Timestep(), 'g', -1, 64)); err != nil {
		return fmt.Errorf("failed to save timestep: %w", err)
	}

	for _, pop := range net.NeuronGroups() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO populations (id, name, kind, width, height) VALUES (?, ?, ?, ?, ?)`,
			int(pop.ID), pop.Name, string(pop.Kind), pop.Shape[0], pop.Shape[1]); err != nil {
			return fmt.Errorf("failed to save population %s: %w", pop.Name, err)
		}
	}

	for _, g := range net.SynapseGroups() {
		if err := saveGroup(ctx, tx, g); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit network: %w", err)
	}
	return nil
}

func saveGroup(ctx context.Context, tx *sql.Tx, g *engine.SynapseGroup) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO synapse_groups (id, pre_id, post_id, synapses) VALUES (?, ?, ?, ?)`,
		g.ID, int(g.Pre), int(g.Post), g.Len()); err != nil {
		return fmt.Errorf("failed to save synapse group %d: %w", g.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO synapses (group_id, ordinal, pre, post, weight, delay_steps) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare synapse insert: %w", err)
	}
	defer stmt.Close()

	for i := range g.PreIdx {
		if _, err := stmt.ExecContext(ctx, g.ID, i, g.PreIdx[i], g.PostIdx[i], g.Weights[i], g.DelaySteps[i]); err != nil {
			return fmt.Errorf("failed to save synapse %d of group %d: %w", i, g.ID, err)
		}
	}

	for _, tag := range g.Plasticity {
		params, err := json.Marshal(tag.Params)
		if err != nil {
			return fmt.Errorf("failed to marshal plasticity params: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plasticity_tags (group_id, name, rule, params) VALUES (?, ?, ?, ?)`,
			g.ID, tag.Name, tag.Rule, string(params)); err != nil {
			return fmt.Errorf("failed to save plasticity tag %s: %w", tag.Name, err)
		}
	}
	return nil
}

// Timestep returns the stored timestep, or 0 when no network was saved.
func (s *SQLiteStore) Timestep(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = 'timestep'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read timestep: %w", err)
	}
	dt, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("stored timestep %q: %w", value, err)
	}
	return dt, nil
}

// ListPopulations returns stored populations ordered by ID.
func (s *SQLiteStore) ListPopulations(ctx context.Context) ([]models.Population, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind, width, height FROM populations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query populations: %w", err)
	}
	defer rows.Close()

	var pops []models.Population
	for rows.Next() {
		var (
			pop  models.Population
			id   int
			kind string
		)
		if err := rows.Scan(&id, &pop.Name, &kind, &pop.Shape[0], &pop.Shape[1]); err != nil {
			return nil, fmt.Errorf("failed to scan population: %w", err)
		}
		pop.ID = models.GroupID(id)
		pop.Kind = models.PopulationKind(kind)
		pops = append(pops, pop)
	}
	return pops, rows.Err()
}

// ListSynapseGroups returns stored groups ordered by ID.
func (s *SQLiteStore) ListSynapseGroups(ctx context.Context) ([]GroupSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.pre_id, g.post_id, pre.name, post.name, g.synapses,
		       EXISTS (SELECT 1 FROM plasticity_tags t WHERE t.group_id = g.id)
		FROM synapse_groups g
		JOIN populations pre ON pre.id = g.pre_id
		JOIN populations post ON post.id = g.post_id
		ORDER BY g.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query synapse groups: %w", err)
	}
	defer rows.Close()

	var groups []GroupSummary
	for rows.Next() {
		var (
			g         GroupSummary
			pre, post int
		)
		if err := rows.Scan(&g.ID, &pre, &post, &g.PreName, &g.PostName, &g.Synapses, &g.Plastic); err != nil {
			return nil, fmt.Errorf("failed to scan synapse group: %w", err)
		}
		g.Pre = models.GroupID(pre)
		g.Post = models.GroupID(post)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// LoadSynapseGroup returns group id with its synapses in stored order.
func (s *SQLiteStore) LoadSynapseGroup(ctx context.Context, id int) (*engine.SynapseGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pre, post, count int
	err := s.db.QueryRowContext(ctx,
		`SELECT pre_id, post_id, synapses FROM synapse_groups WHERE id = ?`, id).Scan(&pre, &post, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("synapse group %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read synapse group %d: %w", id, err)
	}

	g := &engine.SynapseGroup{
		ID:         id,
		Pre:        models.GroupID(pre),
		Post:       models.GroupID(post),
		PreIdx:     make([]int, 0, count),
		PostIdx:    make([]int, 0, count),
		Weights:    make([]float64, 0, count),
		DelaySteps: make([]int, 0, count),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pre, post, weight, delay_steps FROM synapses WHERE group_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query synapses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p, q, steps int
			w           float64
		)
		if err := rows.Scan(&p, &q, &w, &steps); err != nil {
			return nil, fmt.Errorf("failed to scan synapse: %w", err)
		}
		g.PreIdx = append(g.PreIdx, p)
		g.PostIdx = append(g.PostIdx, q)
		g.Weights = append(g.Weights, w)
		g.DelaySteps = append(g.DelaySteps, steps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the single connection before the next query.
	rows.Close()

	tags, err := s.db.QueryContext(ctx,
		`SELECT name, rule, params FROM plasticity_tags WHERE group_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query plasticity tags: %w", err)
	}
	defer tags.Close()

	for tags.Next() {
		var (
			tag    models.PlasticityTag
			params string
		)
		if err := tags.Scan(&tag.Name, &tag.Rule, &params); err != nil {
			return nil, fmt.Errorf("failed to scan plasticity tag: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &tag.Params); err != nil {
			return nil, fmt.Errorf("failed to decode plasticity params for %s: %w", tag.Name, err)
		}
		g.Plasticity = append(g.Plasticity, tag)
	}
	return g, tags.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
