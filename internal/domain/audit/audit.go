// Package audit keeps an append-only trail of every mutating action.
// Entries are written synchronously after the primary effect succeeds;
// a failed write is logged and swallowed so it can never undo or fail
// the action it describes.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID         string         `json:"id,omitempty"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resourceId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	CreatedAt  time.Time      `json:"createdAt,omitempty"`
}

// RequestMeta carries the client attribution recorded with each entry.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Recorder is the narrow interface use-cases call after a successful
// mutation. Implementations must not propagate write failures.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type Filter struct {
	ActorID  string
	Action   string
	Resource string
	From     time.Time
	To       time.Time
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

type Stats struct {
	TotalActions    int           `json:"totalActions"`
	UniqueActors    int           `json:"uniqueActors"`
	ActionBreakdown []ActionCount `json:"actionBreakdown"`
	Timeframe       string        `json:"timeframe"`
	StartDate       time.Time     `json:"startDate"`
	EndDate         time.Time     `json:"endDate"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, e Entry) {
	var detailsJSON []byte
	if e.Details != nil {
		payload, err := json.Marshal(e.Details)
		if err != nil {
			slog.Warn("audit details marshal failed", "action", e.Action, "err", err)
		} else {
			detailsJSON = payload
		}
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, resource, resource_id, details_json, ip, user_agent)
    VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6, $7)
  `, e.ActorID, e.Action, e.Resource, e.ResourceID, detailsJSON, e.IP, e.UserAgent)
	if err != nil {
		slog.Warn("audit write failed", "action", e.Action, "resource", e.Resource, "err", err)
	}
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildBaseQuery("SELECT id, COALESCE(actor_id::text, ''), action, resource, resource_id, details_json, ip, user_agent, created_at", filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var detailsJSON []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Resource, &e.ResourceID, &detailsJSON, &e.IP, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &e.Details); err != nil {
				slog.Warn("audit details unmarshal failed", "id", e.ID, "err", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats aggregates the trail over a rolling timeframe: "day" from local
// midnight, "week" from seven days ago, "month" from the first of the
// current month.
func (s *Service) Stats(ctx context.Context, timeframe string, now time.Time) (Stats, error) {
	start := TimeframeStart(timeframe, now)

	stats := Stats{Timeframe: timeframe, StartDate: start, EndDate: now}

	rows, err := s.DB.Query(ctx, `
    SELECT action, COUNT(1)
    FROM audit_events
    WHERE created_at >= $1
    GROUP BY action
    ORDER BY COUNT(1) DESC
  `, start)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var ac ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return Stats{}, err
		}
		stats.TotalActions += ac.Count
		stats.ActionBreakdown = append(stats.ActionBreakdown, ac)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(DISTINCT actor_id)
    FROM audit_events
    WHERE created_at >= $1 AND actor_id IS NOT NULL
  `, start).Scan(&stats.UniqueActors)
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// Prune deletes entries older than the cutoff. Retention is the only
// path that ever removes audit data.
func (s *Service) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM audit_events WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func TimeframeStart(timeframe string, now time.Time) time.Time {
	switch timeframe {
	case "day":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		return now.Add(-7 * 24 * time.Hour)
	default: // month
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	args := []any{}
	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND actor_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorID)
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.Resource != "" {
		query += fmt.Sprintf(" AND resource = $%d", len(args)+1)
		args = append(args, filter.Resource)
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	return query, args
}
