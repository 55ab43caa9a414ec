package forward

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/envsense/enviroctl/internal/logger"
)

const influxMeasurement = "enviroplus"

type InfluxConfig struct {
	URL      string
	Token    string
	Org      string
	Bucket   string
	Location string
	Interval time.Duration
}

type InfluxForwarder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	cfg      InfluxConfig
	source   SnapshotSource
}

func NewInfluxForwarder(cfg InfluxConfig, source SnapshotSource) *InfluxForwarder {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	return &InfluxForwarder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		cfg:      cfg,
		source:   source,
	}
}

func (f *InfluxForwarder) Name() string {
	return "influxdb"
}

func (f *InfluxForwarder) Run(ctx context.Context) {
	defer f.client.Close()
	loop(ctx, f.cfg.Interval, f.post)
}

func (f *InfluxForwarder) post(ctx context.Context) {
	snapshot := f.source.Latest()
	if snapshot == nil {
		return
	}

	point := influxdb2.NewPointWithMeasurement(influxMeasurement).
		AddTag("location", f.cfg.Location).
		SetTime(time.Now())
	for name, value := range snapshot {
		point.AddField(name, value)
	}

	if err := f.writeAPI.WritePoint(ctx, point); err != nil {
		logger.Warn().Err(err).Msg("Failed to post to InfluxDB")
		return
	}

	logger.Debug().Msg("InfluxDB response: OK")
}
