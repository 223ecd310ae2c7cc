// Package vulnscan evaluates device profiles against a catalog of
// signatures for known-weak service exposure. The prober touches
// nothing on the network: every judgment derives from the profile the
// device already carries, so probing is cheap and repeatable.
package vulnscan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/profiling"
)

// Finding is one signature hit against a device profile. Findings are
// raw: the caller decides which survive deduplication when persisted.
type Finding struct {
	Title       string
	Description string
	Severity    string
	CVE         string
	CVSS        *float64
	Port        *int
	Service     string
	Solution    string
	References  []string
}

// ToVulnerability converts the finding into a persistable record for
// the given device.
func (f *Finding) ToVulnerability(deviceID uuid.UUID) *db.Vulnerability {
	vuln := &db.Vulnerability{
		DeviceID:     deviceID,
		Title:        f.Title,
		Description:  f.Description,
		Severity:     f.Severity,
		CVSSScore:    f.CVSS,
		Port:         f.Port,
		References:   pq.StringArray(f.References),
		DiscoveredAt: time.Now(),
	}
	if f.CVE != "" {
		cve := f.CVE
		vuln.CVEID = &cve
	}
	if f.Service != "" {
		service := f.Service
		vuln.AffectedService = &service
	}
	if f.Solution != "" {
		solution := f.Solution
		vuln.Solution = &solution
	}
	return vuln
}

// Profile is the decoded device view signatures evaluate against.
type Profile struct {
	Device   *db.Device
	Services map[string]db.ServiceInfo
	Meta     *profiling.DeviceMetadata
	Now      time.Time
}

// Signature is one named check over a device profile. Evaluate returns
// zero or more findings and must not mutate the profile.
type Signature struct {
	Name     string
	Evaluate func(profile *Profile) []Finding
}

// Prober runs a signature catalog over device profiles.
type Prober struct {
	catalog []Signature
	logger  *logging.Logger
}

// New creates a prober with the default signature catalog.
func New() *Prober {
	return NewWithCatalog(DefaultCatalog())
}

// NewWithCatalog creates a prober with a custom catalog.
func NewWithCatalog(catalog []Signature) *Prober {
	return &Prober{
		catalog: catalog,
		logger:  logging.Default().WithComponent("vulnscan"),
	}
}

// Probe evaluates every signature against the device and returns the
// raw findings. An undecodable profile fails the probe; an empty
// result is a healthy device.
func (p *Prober) Probe(ctx context.Context, device *db.Device) ([]Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	address := device.IPAddress.String()
	services, err := device.GetServices()
	if err != nil {
		return nil, errors.ErrProbeFailed(address, err)
	}
	meta, err := profiling.ExtractMetadata(device)
	if err != nil {
		return nil, errors.ErrProbeFailed(address, err)
	}

	profile := &Profile{
		Device:   device,
		Services: services,
		Meta:     meta,
		Now:      time.Now(),
	}

	var findings []Finding
	for i := range p.catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		findings = append(findings, p.catalog[i].Evaluate(profile)...)
	}

	p.logger.Debug("Device probed",
		"address", address,
		"signatures", len(p.catalog),
		"findings", len(findings))

	return findings, nil
}
