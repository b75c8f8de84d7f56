// Package influx writes campaign telemetry to InfluxDB, or to a gzip
// line-protocol backup file when InfluxDB is unreachable.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/airfight/pkg/core"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Buckets written by airfight.
const (
	BucketCombat = "combat_events"
	BucketStatus = "campaign_status"
)

// DefaultBucketNames are the buckets created on connect.
var DefaultBucketNames = []string{BucketCombat, BucketStatus}

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	backupFile *os.File
	mu         sync.Mutex
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect establishes a connection to InfluxDB. When the server does not
// answer, points go to the backup file instead.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Info().Str("backupPath", m.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		if err := m.OpenBackup(); err != nil {
			return err
		}
		return nil
	}

	m.IsValid = true
	if err := m.setupOrganizationAndBuckets(); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// OpenBackup opens the gzip backup file for appending.
func (m *Manager) OpenBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter != nil {
		return nil
	}
	if m.BackupPath == "" {
		return errors.New("influx backup path not set")
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// 90 day retention
	for _, bucket := range m.BucketNames {
		if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return err
		}
	}
	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, m.Writers[bucket].Errors())
	}
	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := strings.TrimRight(influxdb2_write.PointToLineProtocol(point, time.Nanosecond), "\n")
	if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WriteCombatEvent records one combat event in the combat bucket.
func (m *Manager) WriteCombatEvent(ctx context.Context, e core.CombatEvent) error {
	return m.WritePoint(ctx, BucketCombat, CombatEventPoint(e))
}

// Close flushes the writers and closes the client and the backup file.
func (m *Manager) Close() error {
	for _, w := range m.Writers {
		w.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return nil
	}
	err := m.BackupWriter.Close()
	if cerr := m.backupFile.Close(); err == nil {
		err = cerr
	}
	m.BackupWriter = nil
	m.backupFile = nil
	return err
}

// CombatEventPoint converts a combat event into a point tagged by campaign
// and event type.
func CombatEventPoint(e core.CombatEvent) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("combat_event").
		AddTag("campaign", e.Campaign).
		AddTag("type", string(e.Type)).
		AddField("clock", e.Clock).
		AddField("lon", e.Position.X).
		AddField("lat", e.Position.Y).
		AddField("damage", e.Damage).
		SetTime(e.Time)
	if e.Attacker != "" {
		p.AddTag("attacker", e.Attacker)
	}
	if e.Target != "" {
		p.AddTag("target", e.Target)
	}
	if e.Item != "" {
		p.AddTag("item", e.Item)
	}
	return p
}

// StatusPoint converts per-tick campaign counters into a point.
func StatusPoint(campaign string, t time.Time, fields map[string]any) *influxdb2_write.Point {
	return influxdb2_write.NewPoint("campaign_status",
		map[string]string{"campaign": campaign}, fields, t)
}

// ParseMetric builds a point from console arguments:
// bucket, measurement, then any number of "tag::name::value" and
// "field::type::name::value" entries, type being string, int or float.
func ParseMetric(args []string) (bucket string, point *influxdb2_write.Point, err error) {
	if len(args) < 2 {
		return "", nil, errors.New("metric needs a bucket and a measurement")
	}
	bucket = args[0]
	point = influxdb2_write.NewPointWithMeasurement(args[1])

	fields := 0
	for _, arg := range args[2:] {
		parts := strings.Split(arg, "::")
		switch {
		case parts[0] == "tag" && len(parts) >= 3:
			point.AddTag(parts[1], parts[2])
		case parts[0] == "field" && len(parts) >= 4:
			fieldType, name, value := parts[1], parts[2], parts[3]
			switch fieldType {
			case "string":
				point.AddField(name, value)
			case "int":
				v, err := strconv.Atoi(value)
				if err != nil {
					return "", nil, fmt.Errorf("error converting field value '%s' to int: %w", value, err)
				}
				point.AddField(name, v)
			case "float":
				v, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return "", nil, fmt.Errorf("error converting field value '%s' to float: %w", value, err)
				}
				point.AddField(name, v)
			default:
				return "", nil, fmt.Errorf("unknown field type '%s'", fieldType)
			}
			fields++
		default:
			return "", nil, fmt.Errorf("malformed metric argument '%s'", arg)
		}
	}
	if fields == 0 {
		return "", nil, errors.New("metric needs at least one field")
	}
	return bucket, point.SetTime(time.Now()), nil
}
