package parser

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"sdn-te/internal/model"
	"sdn-te/internal/objectives"
)

const objectiveSchema = `CREATE TABLE IF NOT EXISTS te_objective (
	id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
	mode VARCHAR(32) NOT NULL,
	src_switch VARCHAR(64) NULL,
	dst_switch VARCHAR(64) NULL,
	switches LONGTEXT NULL,
	match_pattern LONGTEXT NOT NULL,
	symmetric TINYINT(1) NOT NULL DEFAULT 0
)`

// MariaDBObjectives stores objectives in the te_objective table. Row order
// (by id) is the objective order within each mode.
type MariaDBObjectives struct {
	db *sql.DB
}

// NewMariaDBObjectives connects to dsn and verifies the connection.
func NewMariaDBObjectives(dsn string) (*MariaDBObjectives, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &MariaDBObjectives{db: db}, nil
}

// Close closes the database handle.
func (p *MariaDBObjectives) Close() error {
	return p.db.Close()
}

// EnsureSchema creates the te_objective table if it does not exist.
func (p *MariaDBObjectives) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, objectiveSchema); err != nil {
		return fmt.Errorf("failed to create te_objective: %w", err)
	}
	return nil
}

// Load reads every row of te_objective.
func (p *MariaDBObjectives) Load(ctx context.Context) (*objectives.Set, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT id, mode, src_switch, dst_switch, switches, match_pattern, symmetric FROM te_objective ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to load objectives: %w", err)
	}
	defer rows.Close()

	set := &objectives.Set{}
	for rows.Next() {
		var (
			id                     int64
			modeStr, patternJSON   string
			src, dst, switchesJSON sql.NullString
			symmetric              bool
		)
		if err := rows.Scan(&id, &modeStr, &src, &dst, &switchesJSON, &patternJSON, &symmetric); err != nil {
			return nil, err
		}
		if err := appendRow(set, modeStr, src.String, dst.String, switchesJSON.String, patternJSON, symmetric); err != nil {
			return nil, fmt.Errorf("te_objective row %d: %w", id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func appendRow(set *objectives.Set, modeStr, src, dst, switchesJSON, patternJSON string, symmetric bool) error {
	mode, err := model.ParseMode(modeStr)
	if err != nil {
		return err
	}
	var pattern model.MatchPattern
	if patternJSON != "" {
		if err := json.Unmarshal([]byte(patternJSON), &pattern); err != nil {
			return fmt.Errorf("match_pattern: %w", err)
		}
	}

	switch mode {
	case model.ModePassBy:
		var switches []model.SwitchID
		if switchesJSON != "" {
			if err := json.Unmarshal([]byte(switchesJSON), &switches); err != nil {
				return fmt.Errorf("switches: %w", err)
			}
		}
		set.PassBy = append(set.PassBy, model.PassByPathObjective{
			MatchPattern: pattern,
			Switches:     switches,
			Symmetric:    symmetric,
		})
	case model.ModeMinLatency:
		set.MinLatency = append(set.MinLatency, model.MinLatencyObjective{
			MatchPattern: pattern,
			SrcSwitch:    model.SwitchID(src),
			DstSwitch:    model.SwitchID(dst),
			Symmetric:    symmetric,
		})
	case model.ModeMaxBandwidth:
		set.MaxBandwidth = append(set.MaxBandwidth, model.MaxBandwidthObjective{
			MatchPattern: pattern,
			SrcSwitch:    model.SwitchID(src),
			DstSwitch:    model.SwitchID(dst),
			Symmetric:    symmetric,
		})
	default:
		return fmt.Errorf("mode %q has no objectives", modeStr)
	}
	return nil
}

// Save replaces the table content with set in a single transaction.
func (p *MariaDBObjectives) Save(ctx context.Context, set *objectives.Set) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM te_objective"); err != nil {
		return fmt.Errorf("failed to clear te_objective: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO te_objective (mode, src_switch, dst_switch, switches, match_pattern, symmetric) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	insert := func(mode model.Mode, src, dst sql.NullString, switches []model.SwitchID, pattern model.MatchPattern, symmetric bool) error {
		patternJSON, err := json.Marshal(pattern)
		if err != nil {
			return err
		}
		var switchesJSON sql.NullString
		if switches != nil {
			b, err := json.Marshal(switches)
			if err != nil {
				return err
			}
			switchesJSON = sql.NullString{String: string(b), Valid: true}
		}
		_, err = stmt.ExecContext(ctx, string(mode), src, dst, switchesJSON, string(patternJSON), symmetric)
		return err
	}

	if set != nil {
		for _, o := range set.PassBy {
			if err := insert(model.ModePassBy, sql.NullString{}, sql.NullString{}, o.Switches, o.MatchPattern, o.Symmetric); err != nil {
				return fmt.Errorf("failed to save pass-by objective: %w", err)
			}
		}
		for _, o := range set.MinLatency {
			if err := insert(model.ModeMinLatency, nullString(o.SrcSwitch), nullString(o.DstSwitch), nil, o.MatchPattern, o.Symmetric); err != nil {
				return fmt.Errorf("failed to save min-latency objective: %w", err)
			}
		}
		for _, o := range set.MaxBandwidth {
			if err := insert(model.ModeMaxBandwidth, nullString(o.SrcSwitch), nullString(o.DstSwitch), nil, o.MatchPattern, o.Symmetric); err != nil {
				return fmt.Errorf("failed to save max-bandwidth objective: %w", err)
			}
		}
	}
	return tx.Commit()
}

func nullString(id model.SwitchID) sql.NullString {
	return sql.NullString{String: string(id), Valid: id != ""}
}
