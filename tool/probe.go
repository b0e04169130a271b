package tool

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

var ProbeTimeout = 2 * time.Second

// ProbeResult is the outcome of a single reachability check.
type ProbeResult struct {
	Alive bool
	Rtt   time.Duration
}

// ProbeHost sends one unprivileged ICMP echo to host.
func ProbeHost(ctx context.Context, host string) (ProbeResult, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("failed to create pinger: %v", err)
	}
	pinger.Count = 1
	pinger.Timeout = ProbeTimeout
	pinger.SetPrivileged(false)

	if err := pinger.RunWithContext(ctx); err != nil {
		return ProbeResult{}, fmt.Errorf("ping %s failed: %v", host, err)
	}
	stats := pinger.Statistics()
	return ProbeResult{
		Alive: stats.PacketsRecv > 0,
		Rtt:   stats.AvgRtt,
	}, nil
}
