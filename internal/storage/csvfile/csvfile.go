package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"go.uber.org/zap"
)

// influencersFile holds the local roster in development mode.
const influencersFile = "influencers.csv"

// timeFormat is used for all timestamp columns in the CSV files.
const timeFormat = time.RFC3339

// Sink appends the same logical rows as the warehouse sink to local CSV
// files, one file per entity type, for inspection without warehouse access.
type Sink struct {
	dir    string
	logger *zap.Logger
}

// New creates a development sink writing under the given directory.
func New(dir string, logger *zap.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	return &Sink{
		dir:    dir,
		logger: logger.Named("csvfile"),
	}, nil
}

// ActiveInfluencers reads the local roster back from influencers.csv. When
// no local roster exists yet, a built-in sample roster is returned so
// routine runs have something to exercise.
func (s *Sink) ActiveInfluencers(_ context.Context) ([]*roster.Influencer, error) {
	records, err := s.readRoster()
	if os.IsNotExist(err) {
		s.logger.Info("No local roster found, using sample influencers")
		return sampleRoster(), nil
	}

	if err != nil {
		return nil, err
	}

	var influencers []*roster.Influencer

	for i, record := range records {
		if i == 0 {
			continue // header
		}

		inf := influencerFromRecord(record)
		if inf == nil {
			s.logger.Warn("Skipping malformed roster row", zap.Int("line", i+1))
			continue
		}

		if inf.Active {
			influencers = append(influencers, inf)
		}
	}

	s.logger.Info("Loaded local roster", zap.Int("count", len(influencers)))

	return influencers, nil
}

// SaveInfluencer appends one influencer row to influencers.csv.
func (s *Sink) SaveInfluencer(_ context.Context, inf *roster.Influencer) error {
	if err := s.appendRows(influencersFile, influencerHeader(), [][]string{influencerRecord(inf)}); err != nil {
		return fmt.Errorf("failed to save influencer %s: %w", inf.Name, err)
	}

	s.logger.Info("Saved influencer", zap.String("name", inf.Name), zap.String("id", inf.ID))

	return nil
}

// SaveMetrics appends a batch of metric rows to the platform's CSV file.
func (s *Sink) SaveMetrics(_ context.Context, p socialblade.Platform, samples []*socialblade.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(samples))
	for _, sample := range samples {
		rows = append(rows, metricRecord(p, sample))
	}

	if err := s.appendRows(p.MetricsFile(), metricHeader(p), rows); err != nil {
		return fmt.Errorf("failed to save %s metrics: %w", p, err)
	}

	s.logger.Info("Saved metric rows",
		zap.String("platform", string(p)),
		zap.String("file", p.MetricsFile()),
		zap.Int("rows", len(rows)))

	return nil
}

// SetLastUpdated rewrites the roster file with the platform's new timestamp.
// A missing roster file is a no-op: the sample roster is not persisted.
func (s *Sink) SetLastUpdated(
	_ context.Context, influencerID string, p socialblade.Platform, ts time.Time,
) error {
	records, err := s.readRoster()
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return err
	}

	lastUpdatedCol := columnIndex(influencerHeader(), p.LastUpdatedColumn())
	updatedAtCol := columnIndex(influencerHeader(), "updated_at")

	for i, record := range records {
		// Hand-edited rosters can carry short rows; leave them untouched
		if i == 0 || len(record) < len(influencerHeader()) || record[0] != influencerID {
			continue
		}

		record[lastUpdatedCol] = ts.Format(timeFormat)
		record[updatedAtCol] = ts.Format(timeFormat)
	}

	return s.rewrite(influencersFile, records)
}

// UpdateHandles rewrites the given platform handles on the influencer's
// roster row. A missing roster file is a no-op: the sample roster is not
// persisted.
func (s *Sink) UpdateHandles(
	_ context.Context, influencerID string, handles map[socialblade.Platform]string,
) error {
	if len(handles) == 0 {
		return nil
	}

	records, err := s.readRoster()
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return err
	}

	header := influencerHeader()
	updatedAtCol := columnIndex(header, "updated_at")
	now := time.Now().UTC()

	for i, record := range records {
		if i == 0 || len(record) < len(header) || record[0] != influencerID {
			continue
		}

		for p, handle := range handles {
			record[columnIndex(header, p.HandleColumn())] = handle
		}

		record[updatedAtCol] = now.Format(timeFormat)
	}

	if err := s.rewrite(influencersFile, records); err != nil {
		return err
	}

	s.logger.Info("Updated influencer handles",
		zap.String("id", influencerID),
		zap.Int("platforms", len(handles)))

	return nil
}

// Close is a no-op; files are opened per write.
func (s *Sink) Close() error {
	return nil
}

// readRoster loads every record from influencers.csv. The roster exists for
// hand inspection and editing, so field counts are not enforced here and
// callers skip rows shorter than the header. A missing file surfaces the
// os.IsNotExist error unchanged.
func (s *Sink) readRoster() ([][]string, error) {
	file, err := os.Open(filepath.Join(s.dir, influencersFile))
	if os.IsNotExist(err) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", influencersFile, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", influencersFile, err)
	}

	return records, nil
}

// appendRows appends rows to a CSV file, writing the header first when the
// file does not exist yet.
func (s *Sink) appendRows(filename string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, filename)

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if isNew {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// rewrite replaces a CSV file's contents through a temp file rename.
func (s *Sink) rewrite(filename string, records [][]string) error {
	path := filepath.Join(s.dir, filename)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	writer := csv.NewWriter(file)

	if err := writer.WriteAll(records); err != nil {
		file.Close()
		return fmt.Errorf("failed to rewrite %s: %w", filename, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}

	return nil
}

// influencerHeader returns the roster columns, matching the warehouse schema.
func influencerHeader() []string {
	header := []string{"id", "name"}

	for _, p := range socialblade.Platforms() {
		header = append(header, p.HandleColumn())
	}

	for _, p := range socialblade.Platforms() {
		header = append(header, p.LastUpdatedColumn())
	}

	return append(header, "active", "created_at", "updated_at")
}

func influencerRecord(inf *roster.Influencer) []string {
	record := []string{inf.ID, inf.Name}

	for _, p := range socialblade.Platforms() {
		record = append(record, inf.Handle(p))
	}

	for _, p := range socialblade.Platforms() {
		if ts := inf.LastUpdatedOn(p); ts != nil {
			record = append(record, ts.Format(timeFormat))
		} else {
			record = append(record, "")
		}
	}

	return append(record,
		strconv.FormatBool(inf.Active),
		inf.CreatedAt.Format(timeFormat),
		inf.UpdatedAt.Format(timeFormat),
	)
}

// influencerFromRecord maps one roster row onto the domain model. Rows with
// fewer columns than the header cannot be mapped and yield nil.
func influencerFromRecord(record []string) *roster.Influencer {
	header := influencerHeader()
	if len(record) < len(header) {
		return nil
	}

	inf := &roster.Influencer{
		ID:          record[0],
		Name:        record[1],
		Handles:     make(map[socialblade.Platform]string),
		LastUpdated: make(map[socialblade.Platform]time.Time),
	}

	for _, p := range socialblade.Platforms() {
		if handle := record[columnIndex(header, p.HandleColumn())]; handle != "" {
			inf.Handles[p] = handle
		}

		if raw := record[columnIndex(header, p.LastUpdatedColumn())]; raw != "" {
			if ts, err := time.Parse(timeFormat, raw); err == nil {
				inf.LastUpdated[p] = ts
			}
		}
	}

	inf.Active, _ = strconv.ParseBool(record[columnIndex(header, "active")])
	inf.CreatedAt, _ = time.Parse(timeFormat, record[columnIndex(header, "created_at")])
	inf.UpdatedAt, _ = time.Parse(timeFormat, record[columnIndex(header, "updated_at")])

	return inf
}

// metricHeader returns the metric columns for a platform, matching the
// warehouse schema of that platform's table.
func metricHeader(p socialblade.Platform) []string {
	header := []string{"id", "influencer_id"}

	for _, counter := range p.Counters() {
		header = append(header, counter.Column)
	}

	return append(header, "engagement_rate", "timestamp", "created_at")
}

func metricRecord(p socialblade.Platform, sample *socialblade.Sample) []string {
	record := []string{sample.ID, sample.InfluencerID}

	for _, counter := range p.Counters() {
		record = append(record, strconv.FormatInt(sample.Counters[counter.Column], 10))
	}

	return append(record,
		strconv.FormatFloat(sample.EngagementRate, 'f', -1, 64),
		sample.Timestamp.Format(timeFormat),
		sample.CreatedAt.Format(timeFormat),
	)
}

func columnIndex(header []string, name string) int {
	for i, column := range header {
		if column == name {
			return i
		}
	}

	return -1
}

// sampleInfluencerID is the fixed id of the built-in sample influencer, so
// metric rows from successive development sweeps stay correlated.
const sampleInfluencerID = "1"

// sampleRoster mirrors the sample influencers the collector ships for
// development runs before any influencer has been added locally.
func sampleRoster() []*roster.Influencer {
	inf := roster.New("Sample Influencer", map[socialblade.Platform]string{
		socialblade.PlatformTwitter:   "elonmusk",
		socialblade.PlatformYouTube:   "MrBeast",
		socialblade.PlatformInstagram: "cristiano",
	})
	inf.ID = sampleInfluencerID

	return []*roster.Influencer{inf}
}
