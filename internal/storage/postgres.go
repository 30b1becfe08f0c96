package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/config"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const systemColumns = `id, owner_id, system_name, room_code, alert, monitored_image_url, monitored_data, faces, created_at, updated_at`

func scanSystem(row pgx.Row) (*models.System, error) {
	sys := &models.System{}
	var facesRaw []byte
	err := row.Scan(&sys.ID, &sys.OwnerID, &sys.SystemName, &sys.RoomCode, &sys.Alert,
		&sys.MonitoredImageURL, &sys.MonitoredData, &facesRaw, &sys.CreatedAt, &sys.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sys.Faces = decodeRoster(facesRaw)
	return sys, nil
}

// --- Systems ---

func (s *PostgresStore) CreateSystem(ctx context.Context, ownerID, systemName string) (*models.System, error) {
	sys, err := scanSystem(s.pool.QueryRow(ctx,
		`INSERT INTO systems_data (owner_id, system_name) VALUES ($1, $2) RETURNING `+systemColumns,
		ownerID, systemName))
	if err != nil {
		return nil, fmt.Errorf("create system: %w", err)
	}
	return sys, nil
}

func (s *PostgresStore) GetSystem(ctx context.Context, id int64) (*models.System, error) {
	sys, err := scanSystem(s.pool.QueryRow(ctx,
		`SELECT `+systemColumns+` FROM systems_data WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get system: %w", err)
	}
	return sys, nil
}

func (s *PostgresStore) ListSystemsByOwner(ctx context.Context, ownerID string) ([]models.System, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+systemColumns+` FROM systems_data WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	defer rows.Close()

	var systems []models.System
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		systems = append(systems, *sys)
	}
	return systems, nil
}

// FindSystemByRoomCode resolves a system by its shareable room code. Codes
// are opaque and case-sensitive; returns nil when no system carries the code.
func (s *PostgresStore) FindSystemByRoomCode(ctx context.Context, code string) (*models.System, error) {
	sys, err := scanSystem(s.pool.QueryRow(ctx,
		`SELECT `+systemColumns+` FROM systems_data WHERE room_code = $1 LIMIT 1`, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find system by room_code: %w", err)
	}
	return sys, nil
}

// --- Field-scoped writes (idempotent overwrites, last write wins) ---

func (s *PostgresStore) SetRoomCode(ctx context.Context, id int64, code string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE systems_data SET room_code = $1, updated_at = now() WHERE id = $2`, code, id)
	if err != nil {
		return fmt.Errorf("set room_code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("system %d not found", id)
	}
	return nil
}

func (s *PostgresStore) SetAlert(ctx context.Context, id int64, status bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE systems_data SET alert = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("system %d not found", id)
	}
	return nil
}

func (s *PostgresStore) SetMonitoredImageURL(ctx context.Context, id int64, url string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE systems_data SET monitored_image_url = $1, updated_at = now() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("set monitored_image_url: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetMonitoredData(ctx context.Context, id int64, data json.RawMessage) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE systems_data SET monitored_data = $1, updated_at = now() WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("set monitored_data: %w", err)
	}
	return nil
}

// --- Roster ---

// GetRoster returns the system's registered faces. A missing record is an
// empty roster, not an error.
func (s *PostgresStore) GetRoster(ctx context.Context, id int64) ([]models.FaceEntry, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT faces FROM systems_data WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get roster: %w", err)
	}
	return decodeRoster(raw), nil
}

// AddFace appends an entry to the system's roster. Read-modify-write on the
// whole roster array, matching the JSONB column layout.
func (s *PostgresStore) AddFace(ctx context.Context, id int64, entry models.FaceEntry) ([]models.FaceEntry, error) {
	roster, err := s.GetRoster(ctx, id)
	if err != nil {
		return nil, err
	}
	roster = append(roster, entry)
	if err := s.writeRoster(ctx, id, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// RemoveFace drops the entry with the given face id from the roster and
// returns it. Face ids are compared after trimming so string/int mismatches
// do not block deletions.
func (s *PostgresStore) RemoveFace(ctx context.Context, id int64, faceID string) (*models.FaceEntry, error) {
	target := strings.TrimSpace(faceID)
	if target == "" {
		return nil, fmt.Errorf("face_id required")
	}

	roster, err := s.GetRoster(ctx, id)
	if err != nil {
		return nil, err
	}

	var removed *models.FaceEntry
	updated := make([]models.FaceEntry, 0, len(roster))
	for _, face := range roster {
		if removed == nil && strings.TrimSpace(face.FaceID) == target {
			f := face
			removed = &f
			continue
		}
		updated = append(updated, face)
	}
	if removed == nil {
		return nil, fmt.Errorf("face %q not found in system %d", faceID, id)
	}

	if err := s.writeRoster(ctx, id, updated); err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *PostgresStore) writeRoster(ctx context.Context, id int64, roster []models.FaceEntry) error {
	if roster == nil {
		roster = []models.FaceEntry{}
	}
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE systems_data SET faces = $1, updated_at = now() WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("system %d not found", id)
	}
	return nil
}

// decodeRoster parses the faces JSONB column. A malformed field collapses to
// an empty roster and entries that are not well-formed records are dropped;
// a roster-read problem must never abort a capture.
func decodeRoster(raw []byte) []models.FaceEntry {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	roster := make([]models.FaceEntry, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var entry models.FaceEntry
		if err := json.Unmarshal(trimmed, &entry); err != nil {
			continue
		}
		roster = append(roster, entry)
	}
	return roster
}
