// Package ai produces natural-language summaries and recommendations
// from scan output through an OpenAI-compatible chat completion
// endpoint. The analyst never fails its caller: a disabled client, an
// unreachable service, or a malformed reply all degrade to fixed
// placeholder text so scan jobs complete regardless.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/logging"
)

const (
	defaultTimeout = 20 * time.Second

	maxResponseBytes = 1 << 20

	systemPrompt = "You are a network security analyst reviewing scan output. " +
		"Provide concise, actionable findings ordered by risk. " +
		"Prioritize critical exposure and name concrete remediation steps."

	// Placeholder text used whenever analysis cannot run.
	scanFallback            = "AI analysis unavailable. Manual review of scan results recommended."
	vulnerabilityFallback   = "AI analysis unavailable. Manual review recommended for %s severity vulnerability."
	recommendationsFallback = "Unable to generate AI recommendations. Consider manual security review."
)

// Config holds analyst settings.
type Config struct {
	Enabled        bool
	Endpoint       string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// Analyst talks to the configured completion endpoint.
type Analyst struct {
	config Config
	client *http.Client
	logger *logging.Logger
}

// New creates an analyst. A disabled or endpoint-less config yields a
// functioning analyst that only ever returns placeholders.
func New(config Config) *Analyst {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Analyst{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logging.Default().WithComponent("ai"),
	}
}

// Enabled reports whether the analyst can reach a model.
func (a *Analyst) Enabled() bool {
	return a.config.Enabled && a.config.Endpoint != ""
}

// SummarizeScan produces a short security assessment of a completed
// scan from the devices it touched.
func (a *Analyst) SummarizeScan(ctx context.Context, job *db.ScanJob, devices []*db.Device) string {
	if !a.Enabled() {
		return scanFallback
	}

	text, err := a.complete(ctx, buildScanPrompt(job, devices))
	if err != nil {
		a.logger.Warn("Scan summary failed", "job_id", job.ID, "error", err)
		return scanFallback
	}
	return text
}

// AnalyzeVulnerability produces a risk assessment and remediation
// steps for one finding in the context of its device.
func (a *Analyst) AnalyzeVulnerability(ctx context.Context, vuln *db.Vulnerability, device *db.Device) string {
	if !a.Enabled() {
		return fmt.Sprintf(vulnerabilityFallback, vuln.Severity)
	}

	text, err := a.complete(ctx, buildVulnerabilityPrompt(vuln, device))
	if err != nil {
		a.logger.Warn("Vulnerability analysis failed", "vulnerability_id", vuln.ID, "error", err)
		return fmt.Sprintf(vulnerabilityFallback, vuln.Severity)
	}
	return text
}

// RecommendForNetwork produces strategic recommendations from the
// current device and vulnerability inventory.
func (a *Analyst) RecommendForNetwork(ctx context.Context, devices []*db.Device, vulns []*db.Vulnerability) string {
	if !a.Enabled() {
		return recommendationsFallback
	}

	text, err := a.complete(ctx, buildNetworkPrompt(devices, vulns))
	if err != nil {
		a.logger.Warn("Network recommendations failed", "error", err)
		return recommendationsFallback
	}
	return text
}

// Chat completion wire types (OpenAI-compatible).
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete sends one prompt and returns the assistant's reply.
func (a *Analyst) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: a.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	url := strings.TrimSuffix(a.config.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("completion response contained no content")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// buildScanPrompt summarizes a scan the way an analyst would want it
// presented: type distribution, exposed port surface, named services.
func buildScanPrompt(job *db.ScanJob, devices []*db.Device) string {
	typeCounts := make(map[string]int)
	portSet := make(map[int]struct{})
	serviceSet := make(map[string]struct{})

	for _, device := range devices {
		typeCounts[device.DeviceType]++
		for _, port := range device.OpenPorts {
			portSet[int(port)] = struct{}{}
		}
		if services, err := device.GetServices(); err == nil {
			for _, svc := range services {
				if svc.Name != "" {
					serviceSet[svc.Name] = struct{}{}
				}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Assess these %s results for target %s.\n\n", job.Kind, job.Target)
	fmt.Fprintf(&b, "Devices discovered: %d\n", len(devices))
	fmt.Fprintf(&b, "Device types: %s\n", formatCounts(typeCounts))
	fmt.Fprintf(&b, "Open ports across the network: %s\n", formatPorts(portSet))
	fmt.Fprintf(&b, "Services detected: %s\n\n", formatSet(serviceSet))
	b.WriteString("Cover: overall security posture (2-3 sentences), " +
		"the riskiest exposures found, and immediate actions. Keep it under 400 words.")
	return b.String()
}

func buildVulnerabilityPrompt(vuln *db.Vulnerability, device *db.Device) string {
	var b strings.Builder
	b.WriteString("Analyze this vulnerability finding.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", vuln.Title)
	fmt.Fprintf(&b, "Severity: %s\n", vuln.Severity)
	if vuln.CVEID != nil {
		fmt.Fprintf(&b, "CVE: %s\n", *vuln.CVEID)
	}
	if vuln.Port != nil {
		fmt.Fprintf(&b, "Port: %d\n", *vuln.Port)
	}
	fmt.Fprintf(&b, "Description: %s\n\n", vuln.Description)
	fmt.Fprintf(&b, "Affected device: %s", device.IPAddress.String())
	if device.Hostname != nil {
		fmt.Fprintf(&b, " (%s)", *device.Hostname)
	}
	fmt.Fprintf(&b, ", type %s", device.DeviceType)
	if device.OSName != nil {
		fmt.Fprintf(&b, ", OS %s", *device.OSName)
	}
	b.WriteString("\n\nCover: risk assessment, likely attack scenarios, " +
		"and remediation steps in priority order. Keep it under 300 words.")
	return b.String()
}

func buildNetworkPrompt(devices []*db.Device, vulns []*db.Vulnerability) string {
	typeCounts := make(map[string]int)
	for _, device := range devices {
		typeCounts[device.DeviceType]++
	}
	severityCounts := make(map[string]int)
	for _, vuln := range vulns {
		severityCounts[vuln.Severity]++
	}

	worst := make([]*db.Vulnerability, len(vulns))
	copy(worst, vulns)
	sort.SliceStable(worst, func(i, j int) bool {
		return db.SeverityRank(worst[i].Severity) > db.SeverityRank(worst[j].Severity)
	})
	if len(worst) > 5 {
		worst = worst[:5]
	}

	var b strings.Builder
	b.WriteString("Provide security recommendations for this network.\n\n")
	fmt.Fprintf(&b, "Devices: %d (%s)\n", len(devices), formatCounts(typeCounts))
	fmt.Fprintf(&b, "Open vulnerabilities: %d (%s)\n", len(vulns), formatCounts(severityCounts))
	if len(worst) > 0 {
		b.WriteString("Top findings:\n")
		for _, vuln := range worst {
			fmt.Fprintf(&b, "- %s: %s\n", strings.ToUpper(vuln.Severity), vuln.Title)
		}
	}
	b.WriteString("\nCover: immediate actions, short-term improvements, " +
		"and long-term hardening strategy. Keep it under 500 words.")
	return b.String()
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", key, counts[key]))
	}
	return strings.Join(parts, ", ")
}

func formatPorts(ports map[int]struct{}) string {
	if len(ports) == 0 {
		return "none"
	}
	sorted := make([]int, 0, len(ports))
	for port := range ports {
		sorted = append(sorted, port)
	}
	sort.Ints(sorted)

	parts := make([]string, 0, len(sorted))
	for _, port := range sorted {
		parts = append(parts, fmt.Sprintf("%d", port))
	}
	return strings.Join(parts, ", ")
}

func formatSet(values map[string]struct{}) string {
	if len(values) == 0 {
		return "none identified"
	}
	sorted := make([]string, 0, len(values))
	for value := range values {
		sorted = append(sorted, value)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
