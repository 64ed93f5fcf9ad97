// Package postgres is the production Store implementation (§6 "Persisted
// state layout"), raw SQL over database/sql with the lib/pq driver —
// grounded on the teacher's internal/auth/store/revocation/postgres.go,
// which uses the identical ExecContext/QueryRowContext/ON CONFLICT style
// rather than a code-generated query layer.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"vigil/internal/domain"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/platform/tx"
)

// Store is a PostgreSQL-backed implementation of store.Store.
type Store struct {
	db *sql.DB
}

// execer is satisfied by both *sql.DB and *sql.Tx; every query method below
// goes through conn(ctx) rather than s.db directly so a call made inside
// WithinTx participates in that transaction instead of opening a second,
// uncoordinated connection.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) conn(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// WithinTx runs fn inside a single SQL transaction, committing on success
// and rolling back on error or panic. It implements store.Transactor so the
// worker can persist an event's alert, explanation, and modification
// records as one unit (§1 "transactionally records the event, any emitted
// alert, explanation artifacts, and document-modification diffs"; the Event
// row itself commits separately and first, per §4.3 step 6).
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		err = sqlTx.Commit()
	}()

	err = fn(tx.WithTx(ctx, sqlTx))
	return err
}

// Open opens a PostgreSQL connection pool at databaseURL and verifies
// connectivity with a ping, matching the teacher's redis.New fail-fast
// pattern for external dependencies.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an already-open *sql.DB, for callers that manage the pool
// lifecycle themselves (tests against a real database, shared pools).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetActor(ctx context.Context, actorID string) (*domain.Actor, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT actor_id, display_name, department, role, active
		FROM actors WHERE actor_id = $1`, actorID)

	var a domain.Actor
	var dept, role string
	if err := row.Scan(&a.ID, &a.DisplayName, &dept, &role, &a.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	a.Department = domain.Department(dept)
	a.Role = domain.Role(role)
	return &a, nil
}

func (s *Store) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT document_id, filename, department, declared_sensitivity,
		       predicted_sensitivity, predicted_confidence, sensitivity_mismatch,
		       baseline_hash, current_hash, baseline_content, current_content,
		       tampered, tamper_severity, size_bytes
		FROM documents WHERE document_id = $1`, documentID)

	var d domain.Document
	var dept, declared, predicted, severity string
	if err := row.Scan(&d.ID, &d.Filename, &dept, &declared, &predicted, &d.PredictedConfidence,
		&d.SensitivityMismatch, &d.BaselineHash, &d.CurrentHash, &d.BaselineContent,
		&d.CurrentContent, &d.Tampered, &severity, &d.SizeBytes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.Department = domain.Department(dept)
	d.DeclaredSensitivity = domain.Sensitivity(declared)
	d.PredictedSensitivity = domain.Sensitivity(predicted)
	d.TamperSeverity = domain.TamperSeverity(severity)
	return &d, nil
}

func (s *Store) CreateDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO documents (document_id, filename, department, declared_sensitivity,
		                        predicted_sensitivity, predicted_confidence, sensitivity_mismatch,
		                        baseline_hash, current_hash, baseline_content, current_content,
		                        tampered, tamper_severity, size_bytes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		doc.ID, doc.Filename, string(doc.Department), string(doc.DeclaredSensitivity),
		string(doc.PredictedSensitivity), doc.PredictedConfidence, doc.SensitivityMismatch,
		doc.BaselineHash, doc.CurrentHash, doc.BaselineContent, doc.CurrentContent,
		doc.Tampered, string(doc.TamperSeverity), doc.SizeBytes)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// UpdateDocument rewrites the classification/integrity-derived columns.
// BaselineHash and BaselineContent are intentionally not part of the SET
// list: they never mutate after document creation (§3 invariant).
func (s *Store) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE documents SET
			predicted_sensitivity = $2, predicted_confidence = $3, sensitivity_mismatch = $4,
			current_hash = $5, current_content = $6, tampered = $7, tamper_severity = $8,
			size_bytes = $9
		WHERE document_id = $1`,
		doc.ID, string(doc.PredictedSensitivity), doc.PredictedConfidence, doc.SensitivityMismatch,
		doc.CurrentHash, doc.CurrentContent, doc.Tampered, string(doc.TamperSeverity), doc.SizeBytes)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) CreateEvent(ctx context.Context, event *domain.Event) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO events (event_id, actor_pk, actor_id, actor_department_at_time, action,
		                     document_pk, document_id, target_department, event_timestamp,
		                     bytes_transferred, source_ip, device_id, session_id,
		                     cross_department, behavior_score, fused_risk_score, risk_level)
		VALUES ($1, (SELECT id FROM actors WHERE actor_id = $2), $2, $3, $4,
		            (SELECT id FROM documents WHERE document_id = $5), $5, $6, $7,
		            $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.ID, event.ActorID, string(event.ActorDepartmentAtTime), string(event.Action),
		event.DocumentID, string(event.TargetDepartment), event.Timestamp,
		event.BytesTransferred, event.SourceIP, event.DeviceID, event.SessionID,
		event.CrossDepartment, event.BehaviorScore, event.FusedRiskScore, string(event.RiskLevel))
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *Store) RecentByActor(ctx context.Context, actorID string, since time.Time) ([]domain.Event, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT event_id, actor_id, actor_department_at_time, action, document_id,
		       target_department, event_timestamp, bytes_transferred, source_ip,
		       device_id, session_id, cross_department, behavior_score, fused_risk_score, risk_level
		FROM events
		WHERE actor_id = $1 AND event_timestamp > $2
		ORDER BY event_timestamp ASC`, actorID, since)
	if err != nil {
		return nil, fmt.Errorf("recent events by actor: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var actorDept, action, targetDept, riskLevel string
		if err := rows.Scan(&e.ID, &e.ActorID, &actorDept, &action, &e.DocumentID, &targetDept,
			&e.Timestamp, &e.BytesTransferred, &e.SourceIP, &e.DeviceID, &e.SessionID,
			&e.CrossDepartment, &e.BehaviorScore, &e.FusedRiskScore, &riskLevel); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ActorDepartmentAtTime = domain.Department(actorDept)
		e.Action = domain.Action(action)
		e.TargetDepartment = domain.Department(targetDept)
		e.RiskLevel = domain.RiskLevel(riskLevel)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateAlert(ctx context.Context, alert *domain.Alert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return fmt.Errorf("marshal alert details: %w", err)
	}
	_, err = s.conn(ctx).ExecContext(ctx, `
		INSERT INTO alerts (alert_id, event_pk, event_id, actor_pk, actor_id, priority,
		                     risk_score, summary, details, status, assignee, resolution_notes,
		                     created_at, updated_at, resolved_at)
		VALUES ($1, (SELECT id FROM events WHERE event_id = $2), $2,
		            (SELECT id FROM actors WHERE actor_id = $3), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		alert.ID, alert.EventID, alert.ActorID, string(alert.Priority), alert.RiskScore,
		alert.Summary, details, string(alert.Status), alert.Assignee, alert.ResolutionNotes,
		alert.CreatedAt, alert.UpdatedAt, alert.ResolvedAt)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (s *Store) GetAlertByEvent(ctx context.Context, eventID string) (*domain.Alert, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT alert_id, event_id, actor_id, priority, risk_score, summary, details,
		       status, assignee, resolution_notes, created_at, updated_at, resolved_at
		FROM alerts WHERE event_id = $1`, eventID)

	var a domain.Alert
	var priority, status string
	var details []byte
	if err := row.Scan(&a.ID, &a.EventID, &a.ActorID, &priority, &a.RiskScore, &a.Summary,
		&details, &status, &a.Assignee, &a.ResolutionNotes, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get alert by event: %w", err)
	}
	a.Priority = domain.AlertPriority(priority)
	a.Status = domain.AlertStatus(status)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return nil, fmt.Errorf("unmarshal alert details: %w", err)
		}
	}
	return &a, nil
}

func (s *Store) CreateExplanation(ctx context.Context, exp *domain.Explanation) error {
	behaviorAttr, err := json.Marshal(exp.BehaviorAttributions)
	if err != nil {
		return fmt.Errorf("marshal behavior attributions: %w", err)
	}
	docAttr, err := json.Marshal(exp.DocumentAttributions)
	if err != nil {
		return fmt.Errorf("marshal document attributions: %w", err)
	}
	componentScores, err := json.Marshal(exp.ComponentScores)
	if err != nil {
		return fmt.Errorf("marshal component scores: %w", err)
	}
	_, err = s.conn(ctx).ExecContext(ctx, `
		INSERT INTO explanations (explanation_id, event_pk, event_id, explanation_type,
		                           behavior_attributions, baseline_expected_value,
		                           document_attributions, component_scores)
		VALUES ($1, (SELECT id FROM events WHERE event_id = $2), $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_pk, explanation_type) DO NOTHING`,
		exp.ID, exp.EventID, string(exp.Type), behaviorAttr, exp.BaselineExpectedValue, docAttr, componentScores)
	if err != nil {
		return fmt.Errorf("create explanation: %w", err)
	}
	return nil
}

func (s *Store) CreateModification(ctx context.Context, mod *domain.ModificationRecord) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO modification_records (modification_id, event_pk, event_id, document_pk,
		                                   document_id, original_length, modified_length,
		                                   chars_added, chars_removed, change_percent,
		                                   cross_department, risk_score, risk_level,
		                                   original_content, modified_content)
		VALUES ($1, (SELECT id FROM events WHERE event_id = $2), $2,
		            (SELECT id FROM documents WHERE document_id = $3), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		mod.ID, mod.EventID, mod.DocumentID, mod.OriginalLength, mod.ModifiedLength,
		mod.CharsAdded, mod.CharsRemoved, mod.ChangePercent, mod.CrossDepartment,
		mod.RiskScore, string(mod.RiskLevel), mod.OriginalContent, mod.ModifiedContent)
	if err != nil {
		return fmt.Errorf("create modification record: %w", err)
	}
	return nil
}
