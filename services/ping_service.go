package services

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/najoro-git/CyberApp-manager/utils"
)

// rttPattern matches the round-trip time in the output of both the GNU and
// BSD ping tools ("time=0.042 ms") and the Windows one ("time<1ms").
var rttPattern = regexp.MustCompile(`(?i)time[=<]([\d.]+)`)

// PingResult is the outcome of one echo request.
type PingResult struct {
	Online       bool       `json:"online"`
	Message      string     `json:"message"`
	ResponseTime *int       `json:"response_time"` // milliseconds
	LastChecked  *time.Time `json:"last_checked"`
}

// ScanHit is one responding address found by a subnet sweep.
type ScanHit struct {
	IP           string     `json:"ip"`
	ResponseTime *int       `json:"response_time"`
	LastChecked  *time.Time `json:"last_checked"`
}

// Pinger probes hosts by shelling out to the platform ping utility with a
// single echo request and a short timeout.
type Pinger struct {
	Timeout time.Duration
}

func NewPinger() *Pinger {
	return &Pinger{Timeout: 2 * time.Second}
}

// Ping sends one echo request to an IPv4 address. A failed exec means the
// host is offline, not an error; only a missing or malformed address is
// reported as not-successful.
func (p *Pinger) Ping(ctx context.Context, ip string) PingResult {
	if ip == "" {
		return PingResult{Message: "No IP address provided"}
	}
	if !utils.ValidateIP(ip) {
		return PingResult{Message: "Invalid IP address"}
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	name, args := pingCommand(ip)

	start := time.Now()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	elapsed := time.Since(start)
	now := time.Now()

	if err != nil {
		return PingResult{
			Online:      false,
			Message:     "Station offline",
			LastChecked: &now,
		}
	}

	rtt := int(elapsed.Milliseconds())
	if parsed, ok := parseRTT(string(out)); ok {
		rtt = parsed
	}

	return PingResult{
		Online:       true,
		Message:      "Station online",
		ResponseTime: &rtt,
		LastChecked:  &now,
	}
}

// Scan sweeps subnet.start..subnet.end concurrently and returns the
// addresses that answered. Concurrency is capped so a /24 sweep does not
// spawn 254 simultaneous processes.
func (p *Pinger) Scan(ctx context.Context, subnet string, start, end int) ([]ScanHit, error) {
	if !utils.ValidateIP(subnet + ".1") {
		return nil, fmt.Errorf("invalid subnet %q", subnet)
	}
	if start < 1 {
		start = 1
	}
	if end > 254 {
		end = 254
	}
	if start > end {
		return nil, fmt.Errorf("invalid range %d-%d", start, end)
	}

	var (
		mu   sync.Mutex
		hits []ScanHit
		wg   sync.WaitGroup
		sem  = make(chan struct{}, 32)
	)

	for i := start; i <= end; i++ {
		ip := fmt.Sprintf("%s.%d", subnet, i)
		wg.Add(1)
		sem <- struct{}{}
		go func(ip string) {
			defer wg.Done()
			defer func() { <-sem }()

			result := p.Ping(ctx, ip)
			if !result.Online {
				return
			}
			mu.Lock()
			hits = append(hits, ScanHit{IP: ip, ResponseTime: result.ResponseTime, LastChecked: result.LastChecked})
			mu.Unlock()
		}(ip)
	}

	wg.Wait()
	return hits, nil
}

func pingCommand(ip string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "ping", []string{"-n", "1", "-w", "1000", ip}
	}
	return "ping", []string{"-c", "1", "-W", "1", ip}
}

// parseRTT extracts the reported round-trip time in milliseconds. Returns
// false when the tool output carries none, in which case the caller falls
// back to its wall-clock measurement.
func parseRTT(output string) (int, bool) {
	m := rttPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
