package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/bedlam-render/sequencer/internal/channel"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Buckets used by the sequencer.
const (
	BucketBuilds = "sequencer_builds"
	BucketRuns   = "sequencer_runs"
)

// DefaultBucketNames are the InfluxDB buckets the sequencer writes to.
var DefaultBucketNames = []string{
	BucketBuilds,
	BucketRuns,
}

// pointBufferSize is how many points the shipper buffers before dropping.
const pointBufferSize = 256

// QueuedPoint pairs a point with its destination bucket.
type QueuedPoint struct {
	Bucket string
	Point  *influxdb2_write.Point
}

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
	points     channel.Channel[QueuedPoint]
	shipping   bool
	wg         sync.WaitGroup
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
		points:      channel.New[QueuedPoint](pointBufferSize),
	}
}

// Connect establishes a connection to InfluxDB. When the server cannot be
// reached, points go to a gzip'd line-protocol backup file instead.
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

	// validate client connection health
	running, err := m.Client.Ping(context.Background())

	if err != nil || !running {
		m.IsValid = false
		// create backup writer
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.backupFile = file
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		err = m.setupOrganizationAndBuckets()
		if err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	if !m.shipping {
		m.startShipper()
		m.shipping = true
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// get influxOrg
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Logger.Trace().Str("bucket", bucket).Msg("Creating InfluxDB writer")
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)

		m.Logger.Trace().Str("bucket", bucket).Msg("InfluxDB writer created")
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		if _, ok := m.Writers[bucket]; !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		m.Writers[bucket].WritePoint(point)
	} else {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}

		lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
		_, err := m.BackupWriter.Write([]byte(lineProtocol))
		if err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
	}

	return nil
}

// QueuePoint hands a point to the shipper without blocking the build
// loop. Returns false when the buffer is full and the point was dropped.
func (m *Manager) QueuePoint(bucket string, point *influxdb2_write.Point) bool {
	return m.points.TrySend(QueuedPoint{Bucket: bucket, Point: point})
}

// startShipper drains queued points until the channel is closed.
func (m *Manager) startShipper() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for qp := range m.points.Receive() {
			if err := m.WritePoint(context.Background(), qp.Bucket, qp.Point); err != nil {
				m.Logger.Error().Err(err).Str("bucket", qp.Bucket).Msg("Error shipping point")
			}
		}
	}()
}

// Close drains the shipper and flushes whichever sink is active.
func (m *Manager) Close() error {
	m.points.Close()
	m.wg.Wait()

	if m.IsValid {
		for _, w := range m.Writers {
			w.Flush()
		}
		m.Client.Close()
	}

	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			return fmt.Errorf("error closing backup writer: %s", err)
		}
		if err := m.backupFile.Close(); err != nil {
			return fmt.Errorf("error closing backup file: %s", err)
		}
	}

	return nil
}

// SequencePoint builds the per-sequence timing point.
func SequencePoint(runID, preset string, seq *core.Sequence, buildTime time.Duration) *influxdb2_write.Point {
	mode := core.CameraModeFor(seq.Config, preset)
	return influxdb2.NewPoint(
		"sequence_build",
		map[string]string{
			"run_id":      runID,
			"preset":      preset,
			"camera_mode": mode.String(),
		},
		map[string]interface{}{
			"build_ms":    buildTime.Seconds() * 1000,
			"frame_count": seq.FrameCount,
			"body_count":  len(seq.Bodies),
			"has_hair":    seq.HasHair(),
		},
		time.Now(),
	)
}

// RunPoint builds the run summary point.
func RunPoint(runID, preset string, built, failed int, duration time.Duration) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"run",
		map[string]string{
			"run_id": runID,
			"preset": preset,
		},
		map[string]interface{}{
			"built":       built,
			"failed":      failed,
			"duration_ms": duration.Seconds() * 1000,
		},
		time.Now(),
	)
}
