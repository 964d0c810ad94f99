package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/setup/config"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// influencersTable is the warehouse table holding the influencer roster.
const influencersTable = "influencers"

// Sink persists influencer and metric rows to BigQuery with streaming
// inserts. All tables are append-only from this system's perspective except
// the per-platform last-updated timestamps on the roster.
type Sink struct {
	client  *bigquery.Client
	dataset string
	logger  *zap.Logger
}

// New connects to BigQuery using the configured project and dataset.
func New(ctx context.Context, cfg *config.BigQuery, logger *zap.Logger) (*Sink, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	return &Sink{
		client:  client,
		dataset: cfg.Dataset,
		logger:  logger.Named("bigquery"),
	}, nil
}

// mapSaver lets a plain column map act as a streaming insert row.
type mapSaver struct {
	insertID string
	row      map[string]bigquery.Value
}

func (m mapSaver) Save() (map[string]bigquery.Value, string, error) {
	return m.row, m.insertID, nil
}

// ActiveInfluencers returns all influencers flagged active.
func (s *Sink) ActiveInfluencers(ctx context.Context) ([]*roster.Influencer, error) {
	query := s.client.Query(fmt.Sprintf(
		"SELECT * FROM `%s.%s.%s` WHERE active = TRUE",
		s.client.Project(), s.dataset, influencersTable,
	))

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query active influencers: %w", err)
	}

	var influencers []*roster.Influencer

	for {
		var row map[string]bigquery.Value

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read influencer row: %w", err)
		}

		influencers = append(influencers, influencerFromRow(row))
	}

	s.logger.Info("Fetched active influencers", zap.Int("count", len(influencers)))

	return influencers, nil
}

// SaveInfluencer appends one influencer record to the roster table.
func (s *Sink) SaveInfluencer(ctx context.Context, inf *roster.Influencer) error {
	row := map[string]bigquery.Value{
		"id":         inf.ID,
		"name":       inf.Name,
		"active":     inf.Active,
		"created_at": inf.CreatedAt,
		"updated_at": inf.UpdatedAt,
	}

	for _, p := range socialblade.Platforms() {
		if handle := inf.Handle(p); handle != "" {
			row[p.HandleColumn()] = handle
		}

		if ts := inf.LastUpdatedOn(p); ts != nil {
			row[p.LastUpdatedColumn()] = *ts
		}
	}

	inserter := s.client.Dataset(s.dataset).Table(influencersTable).Inserter()
	if err := inserter.Put(ctx, mapSaver{insertID: inf.ID, row: row}); err != nil {
		return fmt.Errorf("failed to insert influencer %s: %w", inf.Name, err)
	}

	s.logger.Info("Saved influencer", zap.String("name", inf.Name), zap.String("id", inf.ID))

	return nil
}

// SaveMetrics appends a batch of metric rows to the platform's table.
func (s *Sink) SaveMetrics(ctx context.Context, p socialblade.Platform, samples []*socialblade.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	savers := make([]mapSaver, 0, len(samples))

	for _, sample := range samples {
		row := map[string]bigquery.Value{
			"id":              sample.ID,
			"influencer_id":   sample.InfluencerID,
			"engagement_rate": sample.EngagementRate,
			"timestamp":       sample.Timestamp,
			"created_at":      sample.CreatedAt,
		}

		for _, counter := range p.Counters() {
			row[counter.Column] = sample.Counters[counter.Column]
		}

		savers = append(savers, mapSaver{insertID: sample.ID, row: row})
	}

	inserter := s.client.Dataset(s.dataset).Table(p.MetricsTable()).Inserter()
	if err := inserter.Put(ctx, savers); err != nil {
		return fmt.Errorf("failed to insert %s metrics: %w", p, err)
	}

	s.logger.Info("Saved metric rows",
		zap.String("platform", string(p)),
		zap.Int("rows", len(savers)))

	return nil
}

// UpdateHandles rewrites the given platform handles on the roster row.
func (s *Sink) UpdateHandles(
	ctx context.Context, influencerID string, handles map[socialblade.Platform]string,
) error {
	if len(handles) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(handles)+1)
	params := []bigquery.QueryParameter{
		{Name: "ts", Value: time.Now().UTC()},
		{Name: "id", Value: influencerID},
	}

	for _, p := range socialblade.Platforms() {
		handle, ok := handles[p]
		if !ok {
			continue
		}

		assignments = append(assignments, fmt.Sprintf("%s = @%s", p.HandleColumn(), p.HandleColumn()))
		params = append(params, bigquery.QueryParameter{Name: p.HandleColumn(), Value: handle})
	}

	assignments = append(assignments, "updated_at = @ts")

	query := s.client.Query(fmt.Sprintf(
		"UPDATE `%s.%s.%s` SET %s WHERE id = @id",
		s.client.Project(), s.dataset, influencersTable, strings.Join(assignments, ", "),
	))
	query.Parameters = params

	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to update handles: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for handle update: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("failed to update handles: %w", err)
	}

	s.logger.Info("Updated influencer handles",
		zap.String("id", influencerID),
		zap.Int("platforms", len(handles)))

	return nil
}

// SetLastUpdated stamps the platform's last successful fetch on the roster row.
func (s *Sink) SetLastUpdated(
	ctx context.Context, influencerID string, p socialblade.Platform, ts time.Time,
) error {
	query := s.client.Query(fmt.Sprintf(
		"UPDATE `%s.%s.%s` SET %s = @ts, updated_at = @ts WHERE id = @id",
		s.client.Project(), s.dataset, influencersTable, p.LastUpdatedColumn(),
	))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "ts", Value: ts},
		{Name: "id", Value: influencerID},
	}

	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", p.LastUpdatedColumn(), err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for %s update: %w", p.LastUpdatedColumn(), err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("failed to update %s: %w", p.LastUpdatedColumn(), err)
	}

	return nil
}

// Close shuts down the underlying BigQuery client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// influencerFromRow maps a roster query row onto the domain model.
func influencerFromRow(row map[string]bigquery.Value) *roster.Influencer {
	inf := &roster.Influencer{
		ID:          stringValue(row["id"]),
		Name:        stringValue(row["name"]),
		Handles:     make(map[socialblade.Platform]string),
		LastUpdated: make(map[socialblade.Platform]time.Time),
		Active:      boolValue(row["active"]),
		CreatedAt:   timeValue(row["created_at"]),
		UpdatedAt:   timeValue(row["updated_at"]),
	}

	for _, p := range socialblade.Platforms() {
		if handle := stringValue(row[p.HandleColumn()]); handle != "" {
			inf.Handles[p] = handle
		}

		if ts := timeValue(row[p.LastUpdatedColumn()]); !ts.IsZero() {
			inf.LastUpdated[p] = ts
		}
	}

	return inf
}

func stringValue(v bigquery.Value) string {
	s, _ := v.(string)
	return s
}

func boolValue(v bigquery.Value) bool {
	b, _ := v.(bool)
	return b
}

func timeValue(v bigquery.Value) time.Time {
	ts, _ := v.(time.Time)
	return ts
}
