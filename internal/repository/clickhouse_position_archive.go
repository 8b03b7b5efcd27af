package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"CryptoBooster/internal/domain/models"
	"CryptoBooster/internal/domain/repository"
)

// ClickHousePositionArchive persists position events and the latest state of
// every position. The positions table is a ReplacingMergeTree versioned by
// updated_at, so each event just inserts a new row and FINAL reads collapse
// to the latest state.
type ClickHousePositionArchive struct {
	db          *sql.DB
	eventsTable string
	stateTable  string
}

func NewClickHousePositionArchive(db *sql.DB, eventsTable, stateTable string) repository.PositionArchive {
	return &ClickHousePositionArchive{db: db, eventsTable: eventsTable, stateTable: stateTable}
}

func (s *ClickHousePositionArchive) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime64(3),
			type LowCardinality(String),
			user_id String,
			position_id String,
			payload String
		) ENGINE = MergeTree
		ORDER BY (user_id, ts)`, s.eventsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id String,
			user_id String,
			crypto_id String,
			crypto_symbol String,
			crypto_name String,
			crypto_image String,
			direction LowCardinality(String),
			entry_price Float64,
			stop_loss Float64,
			take_profit_1 Float64,
			take_profit_2 Float64,
			confidence Float64,
			risk_reward_ratio Float64,
			status LowCardinality(String),
			target_hit LowCardinality(String),
			notes String,
			pattern_analysis String,
			is_manually_edited UInt8,
			is_verified UInt8,
			added_at DateTime64(3),
			updated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY (user_id, id)`, s.stateTable),
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clickhouse archive init: %w", err)
		}
	}
	return nil
}

func (s *ClickHousePositionArchive) Archive(ctx context.Context, ev *models.PositionEventRecord) error {
	payload, err := json.Marshal(ev.Position)
	if err != nil {
		return fmt.Errorf("marshal position payload: %w", err)
	}

	q := fmt.Sprintf("INSERT INTO %s (ts, type, user_id, position_id, payload) VALUES (?, ?, ?, ?, ?)", s.eventsTable)
	if _, err := s.db.ExecContext(ctx, q, ev.At, ev.Type, ev.UserID, ev.Position.ID, string(payload)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	switch ev.Type {
	case models.EventPositionRemoved:
		return s.deletePosition(ctx, ev.UserID, ev.Position.ID)
	case models.EventPositionsClear:
		return s.clearPositions(ctx, ev.UserID)
	default:
		return s.upsertState(ctx, ev)
	}
}

func (s *ClickHousePositionArchive) upsertState(ctx context.Context, ev *models.PositionEventRecord) error {
	p := ev.Position
	q := fmt.Sprintf(`INSERT INTO %s (
		id, user_id, crypto_id, crypto_symbol, crypto_name, crypto_image,
		direction, entry_price, stop_loss, take_profit_1, take_profit_2,
		confidence, risk_reward_ratio, status, target_hit, notes,
		pattern_analysis, is_manually_edited, is_verified, added_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.stateTable)

	_, err := s.db.ExecContext(ctx, q,
		p.ID, ev.UserID, p.CryptoID, p.CryptoSymbol, p.CryptoName, p.CryptoImage,
		p.Direction, p.EntryPrice, p.StopLoss, p.TakeProfit1, p.TakeProfit2,
		p.Confidence, p.RiskRewardRatio, p.Status, p.TargetHit, p.Notes,
		p.PatternAnalysis, boolToUInt8(p.IsManuallyEdited), boolToUInt8(p.IsVerified), p.AddedAt, ev.At,
	)
	if err != nil {
		return fmt.Errorf("insert position state: %w", err)
	}
	return nil
}

func (s *ClickHousePositionArchive) deletePosition(ctx context.Context, userID, positionID string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND id = ?", s.stateTable)
	_, err := s.db.ExecContext(ctx, q, userID, positionID)
	return err
}

func (s *ClickHousePositionArchive) clearPositions(ctx context.Context, userID string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", s.stateTable)
	_, err := s.db.ExecContext(ctx, q, userID)
	return err
}

// LoadPositions returns the latest state of every position of a user, newest
// first, matching the in-memory store ordering.
func (s *ClickHousePositionArchive) LoadPositions(ctx context.Context, userID string) ([]models.TradingPosition, error) {
	q := fmt.Sprintf(`SELECT
		id, crypto_id, crypto_symbol, crypto_name, crypto_image,
		direction, entry_price, stop_loss, take_profit_1, take_profit_2,
		confidence, risk_reward_ratio, status, target_hit, notes,
		pattern_analysis, is_manually_edited, is_verified, added_at
	FROM %s FINAL
	WHERE user_id = ?
	ORDER BY added_at DESC`, s.stateTable)

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()

	var out []models.TradingPosition
	for rows.Next() {
		var rec models.PositionRecord
		var edited, verified uint8
		var addedAt time.Time
		if err := rows.Scan(
			&rec.ID, &rec.CryptoID, &rec.CryptoSymbol, &rec.CryptoName, &rec.CryptoImage,
			&rec.Direction, &rec.EntryPrice, &rec.StopLoss, &rec.TakeProfit1, &rec.TakeProfit2,
			&rec.Confidence, &rec.RiskRewardRatio, &rec.Status, &rec.TargetHit, &rec.Notes,
			&rec.PatternAnalysis, &edited, &verified, &addedAt,
		); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		rec.IsManuallyEdited = edited != 0
		rec.IsVerified = verified != 0
		rec.AddedAt = addedAt
		out = append(out, rec.Position())
	}
	return out, rows.Err()
}

func (s *ClickHousePositionArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHousePositionArchive) Close() error {
	return nil // connection lifecycle belongs to pkg/clickhouse.Client
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
