package orchestrator

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/discovery"
	"github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/profiling"
	"github.com/sentinelsec/sentinel/internal/target"
	"github.com/sentinelsec/sentinel/internal/workers"
)

// runDiscovery finds responsive hosts and profiles each over the worker
// pool, upserting every successful profile by IP. A failed host is
// omitted and the job proceeds; a failing store fails the job. Zero
// responsive hosts completes with a metadata note.
func (o *Orchestrator) runDiscovery(
	ctx context.Context, job *db.ScanJob, spec *target.Spec, profOpts profiling.Options,
) (*jobOutcome, error) {
	hosts, err := o.discoverer.Discover(ctx, spec)
	if err != nil {
		return nil, err
	}

	if len(hosts) == 0 {
		return &jobOutcome{
			severityCounts: map[string]int{},
			metadata: map[string]interface{}{
				"target_kind":      string(spec.Kind()),
				"responsive_hosts": 0,
				"note":             "no responsive hosts in target range",
			},
		}, nil
	}

	methods := make(map[string]int)
	byAddress := make(map[string]discovery.Host, len(hosts))
	for _, host := range hosts {
		byAddress[host.IP.String()] = host
		for _, method := range host.Methods {
			methods[method]++
		}
	}

	var (
		mu     sync.Mutex
		merged []*db.Device
	)

	pool := o.newPool(ctx, len(hosts))
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	for address := range byAddress {
		task := workers.NewProfileTask(taskID(job.ID, address), address,
			func(taskCtx context.Context, addr string) error {
				device, err := o.profiler.Profile(taskCtx, addr, profOpts)
				if err != nil {
					return err
				}

				host := byAddress[addr]
				if device.MACAddress == nil && host.MAC != "" {
					device.MACAddress = parseMAC(host.MAC)
				}
				device.DiscoveredBy = pq.StringArray(host.Methods)

				if err := o.stores.Devices.CreateOrUpdate(taskCtx, device); err != nil {
					return err
				}

				mu.Lock()
				merged = append(merged, device)
				mu.Unlock()
				return nil
			})
		if err := pool.Submit(task); err != nil {
			return nil, err
		}
	}

	failures, err := o.drain(ctx, pool, job, "Host omitted from discovery")
	if err != nil {
		return nil, err
	}

	return &jobOutcome{
		devices:           merged,
		devicesDiscovered: len(merged),
		severityCounts:    map[string]int{},
		metadata: map[string]interface{}{
			"target_kind":       string(spec.Kind()),
			"responsive_hosts":  len(hosts),
			"profile_failures":  failures,
			"discovery_methods": methods,
		},
	}, nil
}

// runVulnerability probes a device set against the signature catalog.
// The job counter reports raw findings; the store keeps only rows whose
// dedup key was absent, so re-probing inflates the counter without
// adding rows.
func (o *Orchestrator) runVulnerability(
	ctx context.Context, job *db.ScanJob, spec *target.Spec, profOpts profiling.Options,
) (*jobOutcome, error) {
	devices, note, err := o.vulnerabilityTargets(ctx, spec)
	if err != nil {
		return nil, err
	}

	if len(devices) == 0 {
		return &jobOutcome{
			severityCounts: map[string]int{},
			metadata: map[string]interface{}{
				"target_kind":    string(spec.Kind()),
				"devices_probed": 0,
				"note":           note,
			},
		}, nil
	}

	byAddress := make(map[string]*db.Device, len(devices))
	for _, device := range devices {
		byAddress[device.IPAddress.String()] = device
	}

	var (
		mu             sync.Mutex
		probed         []*db.Device
		rawFindings    int
		newFindings    int
		severityCounts = make(map[string]int)
	)

	pool := o.newPool(ctx, len(devices))
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	for address := range byAddress {
		task := workers.NewProbeTask(taskID(job.ID, address), address,
			func(taskCtx context.Context, addr string) error {
				device, err := o.refreshProfile(taskCtx, byAddress[addr], profOpts)
				if err != nil {
					return err
				}

				findings, err := o.prober.Probe(taskCtx, device)
				if err != nil {
					return err
				}

				created := 0
				for _, finding := range findings {
					vuln := finding.ToVulnerability(device.ID)
					stored, err := o.stores.Vulnerabilities.CreateIfAbsent(taskCtx, vuln)
					if err != nil {
						return err
					}
					if stored {
						created++
						if finding.Severity == db.SeverityCritical {
							o.raiseAlert(taskCtx, device, vuln)
						}
					}
				}

				mu.Lock()
				probed = append(probed, device)
				rawFindings += len(findings)
				newFindings += created
				for _, finding := range findings {
					severityCounts[finding.Severity]++
				}
				mu.Unlock()
				return nil
			})
		if err := pool.Submit(task); err != nil {
			return nil, err
		}
	}

	failures, err := o.drain(ctx, pool, job, "Device contributed no findings")
	if err != nil {
		return nil, err
	}

	return &jobOutcome{
		devices:              probed,
		devicesDiscovered:    len(probed),
		vulnerabilitiesFound: rawFindings,
		severityCounts:       severityCounts,
		metadata: map[string]interface{}{
			"target_kind":        string(spec.Kind()),
			"devices_probed":     len(probed),
			"findings_raw":       rawFindings,
			"findings_new":       newFindings,
			"findings_duplicate": rawFindings - newFindings,
			"probe_failures":     failures,
		},
	}, nil
}

// runPortScan profiles one address with full service detection and
// records the port buckets and service table in the job metadata. With
// a single host there is nothing to fan out, so a failed profile fails
// the job.
func (o *Orchestrator) runPortScan(
	ctx context.Context, job *db.ScanJob, spec *target.Spec, profOpts profiling.Options,
) (*jobOutcome, error) {
	address := spec.Addresses()[0].String()

	device, err := o.profiler.Profile(ctx, address, profOpts)
	if err != nil {
		return nil, err
	}
	if err := o.stores.Devices.CreateOrUpdate(ctx, device); err != nil {
		return nil, err
	}

	meta, err := profiling.ExtractMetadata(device)
	if err != nil {
		return nil, errors.ErrProfilingFailed(address, err)
	}
	services, err := device.GetServices()
	if err != nil {
		return nil, errors.ErrProfilingFailed(address, err)
	}

	table := make([]db.ServiceInfo, 0, len(services))
	for _, service := range services {
		table = append(table, service)
	}
	sort.Slice(table, func(i, j int) bool { return table[i].Port < table[j].Port })

	return &jobOutcome{
		devices:           []*db.Device{device},
		devicesDiscovered: 1,
		portsScanned:      meta.PortsScanned,
		severityCounts:    map[string]int{},
		metadata: map[string]interface{}{
			"target_kind": string(spec.Kind()),
			"port_buckets": map[string]int{
				"open":     len(device.OpenPorts),
				"filtered": meta.FilteredPorts,
				"closed":   meta.ClosedPorts,
			},
			"services": table,
		},
	}, nil
}

// vulnerabilityTargets resolves the probe set: a literal address maps
// to that inventory device, the "all" sentinel to every active device.
// An empty set is reported with a note, not an error.
func (o *Orchestrator) vulnerabilityTargets(ctx context.Context, spec *target.Spec) ([]*db.Device, string, error) {
	if spec.IsAll() {
		devices, err := o.stores.Devices.GetActive(ctx)
		if err != nil {
			return nil, "", err
		}
		if len(devices) == 0 {
			return nil, "no active devices in inventory", nil
		}
		return devices, "", nil
	}

	addresses := spec.Addresses()
	device, err := o.stores.Devices.GetByIP(ctx, db.IPAddr{IP: addresses[0]})
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, "target device is not in the inventory", nil
		}
		return nil, "", err
	}

	return []*db.Device{device}, "", nil
}

// refreshProfile re-profiles a device whose last profile is older than
// the staleness window. A failed re-profile keeps the stale profile;
// only store and context errors propagate.
func (o *Orchestrator) refreshProfile(
	ctx context.Context, device *db.Device, profOpts profiling.Options,
) (*db.Device, error) {
	if o.config.DeviceStaleness <= 0 || time.Since(device.LastSeen) <= o.config.DeviceStaleness {
		return device, nil
	}

	address := device.IPAddress.String()
	fresh, err := o.profiler.Profile(ctx, address, profOpts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		o.logger.WarnProfile("Stale profile retained, re-profile failed", address, err)
		return device, nil
	}

	// The profiler does not know how the device was first found.
	fresh.DiscoveredBy = device.DiscoveredBy
	if err := o.stores.Devices.CreateOrUpdate(ctx, fresh); err != nil {
		return nil, err
	}

	return fresh, nil
}

// drain waits for the pool to finish and classifies task errors: store
// failures abort the job, anything else omits the host and is counted.
func (o *Orchestrator) drain(ctx context.Context, pool *workers.Pool, job *db.ScanJob, omitMsg string) (int, error) {
	if err := pool.WaitIdle(ctx); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	failures := 0
	prefix := job.ID.String() + "/"
	for _, result := range pool.Results() {
		if result.Error == nil {
			continue
		}
		if isMergeFatal(result.Error) {
			return 0, result.Error
		}
		failures++
		o.logger.WarnProfile(omitMsg, strings.TrimPrefix(result.TaskID, prefix), result.Error)
	}

	return failures, nil
}

// newPool builds the per-job worker pool, sized from config with room
// to queue every task up front.
func (o *Orchestrator) newPool(ctx context.Context, queueSize int) *workers.Pool {
	cfg := workers.DefaultConfig()
	cfg.Size = o.config.WorkerPoolSize
	if queueSize > cfg.QueueSize {
		cfg.QueueSize = queueSize
	}
	return workers.New(ctx, cfg)
}

// taskID keys a pool task by job and host so failures trace back to an
// address in the logs.
func taskID(jobID uuid.UUID, address string) string {
	return jobID.String() + "/" + address
}

// parseMAC converts a discovery-reported MAC, tolerating bad input.
func parseMAC(s string) *db.MACAddr {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return nil
	}
	return &db.MACAddr{HardwareAddr: hw}
}

// isMergeFatal reports whether a task error means the store itself is
// failing, which fails the whole job rather than omitting one host.
func isMergeFatal(err error) bool {
	switch errors.GetCode(err) {
	case errors.CodeDatabaseQuery, errors.CodeDatabaseConnection,
		errors.CodeDatabaseTimeout, errors.CodeConflict:
		return true
	}
	return false
}
