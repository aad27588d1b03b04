package datastore

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxDBStore persists live-data telemetry: one PID reading per point,
// tagged by VIN, so a dashboard can query time-series trends without
// loading SQLite's low-frequency tables.
type InfluxDBStore struct {
	client   influxdb2.Client
	org      string
	bucket   string
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
}

// NewInfluxDBStore connects to an InfluxDB instance and verifies it's reachable.
func NewInfluxDBStore(url, token, org, bucket string) (*InfluxDBStore, error) {
	client := influxdb2.NewClient(url, token)

	store := &InfluxDBStore{
		client:   client,
		org:      org,
		bucket:   bucket,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		queryAPI: client.QueryAPI(org),
	}

	if _, err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	return store, nil
}

func (s *InfluxDBStore) SaveTelemetry(vin string, point *TelemetryPoint) error {
	p := influxdb2.NewPoint(
		"pid_reading",
		map[string]string{
			"vin": vin,
			"pid": point.PID,
		},
		map[string]interface{}{
			"value": point.Value,
			"unit":  point.Unit,
		},
		point.Timestamp,
	)

	if err := s.writeAPI.WritePoint(context.Background(), p); err != nil {
		return fmt.Errorf("failed to write telemetry point: %w", err)
	}
	return nil
}

func (s *InfluxDBStore) GetTelemetry(vin string, start, end time.Time) ([]*TelemetryPoint, error) {
	query := fmt.Sprintf(`
		from(bucket:"%s")
			|> range(start: %s, stop: %s)
			|> filter(fn: (r) => r["_measurement"] == "pid_reading" and r["vin"] == "%s" and r["_field"] == "value")
	`, s.bucket, start.Format(time.RFC3339), end.Format(time.RFC3339), vin)

	result, err := s.queryAPI.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry: %w", err)
	}
	defer result.Close()

	var points []*TelemetryPoint
	for result.Next() {
		record := result.Record()
		value, _ := record.Value().(float64)
		pid, _ := record.ValueByKey("pid").(string)
		points = append(points, &TelemetryPoint{
			Timestamp: record.Time(),
			VIN:       vin,
			PID:       pid,
			Value:     value,
		})
	}
	return points, result.Err()
}

func (s *InfluxDBStore) GetLatestTelemetry(vin string) (*TelemetryPoint, error) {
	query := fmt.Sprintf(`
		from(bucket:"%s")
			|> range(start: -1h)
			|> filter(fn: (r) => r["_measurement"] == "pid_reading" and r["vin"] == "%s" and r["_field"] == "value")
			|> last()
	`, s.bucket, vin)

	result, err := s.queryAPI.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest telemetry: %w", err)
	}
	defer result.Close()

	if !result.Next() {
		return nil, fmt.Errorf("no telemetry data found for VIN: %s", vin)
	}

	record := result.Record()
	value, _ := record.Value().(float64)
	pid, _ := record.ValueByKey("pid").(string)
	return &TelemetryPoint{
		Timestamp: record.Time(),
		VIN:       vin,
		PID:       pid,
		Value:     value,
	}, nil
}

func (s *InfluxDBStore) Close() error {
	s.client.Close()
	return nil
}
