package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/models"
)

// StationProbe is the probe outcome for one station.
type StationProbe struct {
	StationID   uint   `json:"station_id"`
	StationName string `json:"station_name"`
	IPAddress   string `json:"ip_address"`
	PingResult
}

// ProbeStats aggregates a bulk probe run.
type ProbeStats struct {
	Total               int `json:"total"`
	Online              int `json:"online"`
	Offline             int `json:"offline"`
	AverageResponseTime int `json:"average_response_time"`
}

// MonitorService probes station reachability and keeps the last-known
// connectivity columns fresh, both on demand and on a cron schedule.
type MonitorService struct {
	db       *gorm.DB
	pinger   *Pinger
	logger   zerolog.Logger
	interval time.Duration
	cron     *cron.Cron
}

func NewMonitorService(db *gorm.DB, pinger *Pinger, logger zerolog.Logger, interval time.Duration) *MonitorService {
	return &MonitorService{
		db:       db,
		pinger:   pinger,
		logger:   logger,
		interval: interval,
	}
}

// StartScheduler runs a bulk probe every interval until Stop is called.
func (s *MonitorService) StartScheduler() {
	s.cron = cron.New()
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		probes, stats, err := s.ProbeAll(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("scheduled connectivity probe failed")
			return
		}
		s.logger.Info().
			Int("stations", len(probes)).
			Int("online", stats.Online).
			Int("offline", stats.Offline).
			Msg("connectivity probe completed")
	}))
	s.cron.Start()
	s.logger.Info().Dur("interval", s.interval).Msg("connectivity monitor started")
}

// Stop halts the scheduler.
func (s *MonitorService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// ProbeStation pings one station and persists the outcome on its row.
func (s *MonitorService) ProbeStation(ctx context.Context, station *models.Station) (PingResult, error) {
	result := s.pinger.Ping(ctx, station.IPAddress)

	status := models.ConnectionOffline
	if result.Online {
		status = models.ConnectionOnline
	}

	now := time.Now()
	err := s.db.Model(&models.Station{}).Where("id = ?", station.ID).
		Updates(map[string]interface{}{
			"connection_status": status,
			"last_ping_time":    now,
			"response_time":     result.ResponseTime,
		}).Error
	if err != nil {
		return result, err
	}

	station.ConnectionStatus = status
	station.LastPingTime = &now
	station.ResponseTime = result.ResponseTime
	return result, nil
}

// ProbeAll pings every station with a configured IP concurrently, persists
// each outcome and aggregates the run. Joins on all sub-pings; there is no
// partial short-circuit.
func (s *MonitorService) ProbeAll(ctx context.Context) ([]StationProbe, ProbeStats, error) {
	var stations []models.Station
	if err := s.db.Where("ip_address <> ''").Find(&stations).Error; err != nil {
		return nil, ProbeStats{}, err
	}

	probes := make([]StationProbe, len(stations))
	var wg sync.WaitGroup
	for i := range stations {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.ProbeStation(ctx, &stations[i])
			if err != nil {
				s.logger.Error().Err(err).Uint("station_id", stations[i].ID).Msg("failed to persist probe result")
			}
			probes[i] = StationProbe{
				StationID:   stations[i].ID,
				StationName: stations[i].Name,
				IPAddress:   stations[i].IPAddress,
				PingResult:  result,
			}
		}(i)
	}
	wg.Wait()

	stats := ProbeStats{Total: len(probes)}
	rttSum := 0
	for _, p := range probes {
		if p.Online {
			stats.Online++
			if p.ResponseTime != nil {
				rttSum += *p.ResponseTime
			}
		} else {
			stats.Offline++
		}
	}
	if stats.Online > 0 {
		stats.AverageResponseTime = rttSum / stats.Online
	}

	return probes, stats, nil
}
