package vulnscan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sentinelsec/sentinel/internal/db"
)

func portRef(port int) *int {
	return &port
}

func scoreRef(score float64) *float64 {
	return &score
}

// serviceOn returns the recorded service for a port when the port is
// open, in either protocol.
func serviceOn(profile *Profile, port int) (db.ServiceInfo, bool) {
	if !profile.Device.HasOpenPort(port) {
		return db.ServiceInfo{}, false
	}
	svc, ok := profile.Services[strconv.Itoa(port)]
	return svc, ok
}

// productContains matches a product substring case-insensitively
// across all recorded services, returning the first hit.
func productContains(profile *Profile, fragment string) (db.ServiceInfo, bool) {
	fragment = strings.ToLower(fragment)
	for _, svc := range profile.Services {
		if strings.Contains(strings.ToLower(svc.Product), fragment) {
			return svc, true
		}
	}
	return db.ServiceInfo{}, false
}

// majorVersion parses the leading integer of a dotted version string.
func majorVersion(version string) (int, bool) {
	head, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return major, true
}

// DefaultCatalog returns the built-in signature set. Signatures are
// independent; their order carries no meaning.
func DefaultCatalog() []Signature {
	return []Signature{
		{
			Name: "telnet-exposed",
			Evaluate: func(profile *Profile) []Finding {
				if !profile.Device.HasOpenPort(23) {
					return nil
				}
				return []Finding{{
					Title:       "Telnet service exposed",
					Description: "The device accepts Telnet connections. Telnet transmits credentials and session data in cleartext and is trivially intercepted on a shared network.",
					Severity:    db.SeverityHigh,
					Port:        portRef(23),
					Service:     "telnet",
					Solution:    "Disable the Telnet service and manage the device over SSH.",
				}}
			},
		},
		{
			Name: "ftp-cleartext",
			Evaluate: func(profile *Profile) []Finding {
				if !profile.Device.HasOpenPort(21) {
					return nil
				}
				svc, _ := serviceOn(profile, 21)
				return []Finding{{
					Title:       "FTP service transmits credentials in cleartext",
					Description: "An FTP server is reachable on port 21. FTP authenticates in cleartext unless explicitly wrapped in TLS.",
					Severity:    db.SeverityMedium,
					Port:        portRef(21),
					Service:     serviceName(svc, "ftp"),
					Solution:    "Replace FTP with SFTP or enable FTPS and disable plain logins.",
				}}
			},
		},
		{
			Name: "vsftpd-backdoor",
			Evaluate: func(profile *Profile) []Finding {
				svc, ok := productContains(profile, "vsftpd")
				if !ok || !strings.HasPrefix(svc.Version, "2.3.4") {
					return nil
				}
				return []Finding{{
					Title:       "Backdoored vsftpd 2.3.4 release in use",
					Description: "The vsftpd 2.3.4 distribution was compromised upstream and ships a remote backdoor triggered by a crafted username.",
					Severity:    db.SeverityCritical,
					CVE:         "CVE-2011-2523",
					CVSS:        scoreRef(10.0),
					Port:        portRef(svc.Port),
					Service:     svc.Product,
					Solution:    "Upgrade vsftpd to a current release immediately.",
					References:  []string{"https://nvd.nist.gov/vuln/detail/CVE-2011-2523"},
				}}
			},
		},
		{
			Name: "smb-exposed",
			Evaluate: func(profile *Profile) []Finding {
				if !profile.Device.HasOpenPort(445) {
					return nil
				}
				svc, _ := serviceOn(profile, 445)
				return []Finding{{
					Title:       "SMB service exposed",
					Description: "The device exposes SMB file sharing on port 445. SMB endpoints are a primary lateral-movement target and should not be reachable beyond their share consumers.",
					Severity:    db.SeverityMedium,
					Port:        portRef(445),
					Service:     serviceName(svc, "microsoft-ds"),
					Solution:    "Restrict port 445 to the network segments that consume the shares.",
				}}
			},
		},
		{
			Name: "samba3-eol",
			Evaluate: func(profile *Profile) []Finding {
				svc, ok := productContains(profile, "samba")
				if !ok || !strings.Contains(svc.Version, "3.") {
					return nil
				}
				return []Finding{{
					Title:       "End-of-life Samba 3.x release",
					Description: fmt.Sprintf("The device runs %s %s. The 3.x series is end of life and affected by the is_known_pipename remote code execution.", svc.Product, svc.Version),
					Severity:    db.SeverityHigh,
					CVE:         "CVE-2017-7494",
					CVSS:        scoreRef(9.8),
					Port:        portRef(svc.Port),
					Service:     svc.Product,
					Solution:    "Upgrade Samba to a maintained release series.",
					References:  []string{"https://nvd.nist.gov/vuln/detail/CVE-2017-7494"},
				}}
			},
		},
		{
			Name: "netbios-legacy",
			Evaluate: func(profile *Profile) []Finding {
				if !profile.Device.HasOpenPort(139) {
					return nil
				}
				return []Finding{{
					Title:       "Legacy NetBIOS session service enabled",
					Description: "The NetBIOS session service on port 139 predates SMB over TCP and leaks host and workgroup details to unauthenticated peers.",
					Severity:    db.SeverityLow,
					Port:        portRef(139),
					Service:     "netbios-ssn",
					Solution:    "Disable NetBIOS over TCP/IP where only modern SMB clients connect.",
				}}
			},
		},
		{
			Name: "rdp-exposed",
			Evaluate: func(profile *Profile) []Finding {
				if !profile.Device.HasOpenPort(3389) {
					return nil
				}
				svc, _ := serviceOn(profile, 3389)
				return []Finding{{
					Title:       "Remote Desktop exposed",
					Description: "RDP on port 3389 answers network connections. Exposed RDP endpoints are continuously brute-forced and were the entry point for several wormable exploits.",
					Severity:    db.SeverityHigh,
					Port:        portRef(3389),
					Service:     serviceName(svc, "ms-wbt-server"),
					Solution:    "Gate RDP behind a VPN or gateway and enforce network level authentication.",
				}}
			},
		},
		{
			Name: "cleartext-mail",
			Evaluate: func(profile *Profile) []Finding {
				mailPorts := []struct {
					port int
					name string
				}{
					{110, "pop3"},
					{143, "imap"},
				}
				var findings []Finding
				for _, mail := range mailPorts {
					if !profile.Device.HasOpenPort(mail.port) {
						continue
					}
					findings = append(findings, Finding{
						Title:       fmt.Sprintf("Cleartext %s service enabled", strings.ToUpper(mail.name)),
						Description: fmt.Sprintf("The %s service on port %d accepts logins without transport encryption.", strings.ToUpper(mail.name), mail.port),
						Severity:    db.SeverityLow,
						Port:        portRef(mail.port),
						Service:     mail.name,
						Solution:    "Serve mailbox access over the TLS variant only and close the cleartext port.",
					})
				}
				return findings
			},
		},
		{
			Name: "http-without-tls",
			Evaluate: func(profile *Profile) []Finding {
				if !profile.Device.HasOpenPort(80) || profile.Device.HasOpenPort(443) {
					return nil
				}
				return []Finding{{
					Title:       "Web interface served without TLS",
					Description: "The device serves HTTP on port 80 with no HTTPS listener. Any credentials entered into this interface cross the network in cleartext.",
					Severity:    db.SeverityLow,
					Port:        portRef(80),
					Service:     "http",
					Solution:    "Serve the interface over HTTPS and redirect or close port 80.",
				}}
			},
		},
		{
			Name: "snmp-default-community",
			Evaluate: func(profile *Profile) []Finding {
				if profile.Meta == nil || profile.Meta.SNMP == nil {
					return nil
				}
				return []Finding{{
					Title:       "SNMP agent answers the default community string",
					Description: "The device's SNMP agent responded to the scanner's default community string, exposing system and configuration detail to anyone who asks.",
					Severity:    db.SeverityHigh,
					Port:        portRef(161),
					Service:     "snmp",
					Solution:    "Rotate the community string or migrate to SNMPv3 with authentication.",
				}}
			},
		},
		{
			Name: "tls-certificate-expired",
			Evaluate: func(profile *Profile) []Finding {
				if profile.Meta == nil {
					return nil
				}
				var findings []Finding
				for _, cert := range profile.Meta.TLS {
					if !cert.Expired(profile.Now) {
						continue
					}
					findings = append(findings, Finding{
						Title:       "Expired TLS certificate",
						Description: fmt.Sprintf("The certificate on port %d (subject %q) expired %s.", cert.Port, cert.SubjectCN, cert.NotAfter.Format("2006-01-02")),
						Severity:    db.SeverityMedium,
						Port:        portRef(cert.Port),
						Service:     "https",
						Solution:    "Renew the certificate and automate rotation before expiry.",
					})
				}
				return findings
			},
		},
		{
			Name: "tls-certificate-self-signed",
			Evaluate: func(profile *Profile) []Finding {
				if profile.Meta == nil {
					return nil
				}
				var findings []Finding
				for _, cert := range profile.Meta.TLS {
					if !cert.SelfSigned {
						continue
					}
					findings = append(findings, Finding{
						Title:       "Self-signed TLS certificate",
						Description: fmt.Sprintf("The certificate on port %d is self-signed, so clients cannot distinguish the device from an interceptor.", cert.Port),
						Severity:    db.SeverityLow,
						Port:        portRef(cert.Port),
						Service:     "https",
						Solution:    "Issue the device a certificate from an internal or public CA.",
					})
				}
				return findings
			},
		},
		{
			Name: "openssh-outdated",
			Evaluate: func(profile *Profile) []Finding {
				svc, ok := productContains(profile, "openssh")
				if !ok {
					return nil
				}
				major, parsed := majorVersion(svc.Version)
				if !parsed || major >= 7 {
					return nil
				}
				return []Finding{{
					Title:       "Outdated OpenSSH release",
					Description: fmt.Sprintf("The device runs OpenSSH %s. Releases before 7.0 carry known information-leak and authentication weaknesses.", svc.Version),
					Severity:    db.SeverityMedium,
					CVE:         "CVE-2016-0777",
					Port:        portRef(svc.Port),
					Service:     svc.Product,
					Solution:    "Upgrade OpenSSH to a current release.",
					References:  []string{"https://nvd.nist.gov/vuln/detail/CVE-2016-0777"},
				}}
			},
		},
		{
			Name: "apache22-eol",
			Evaluate: func(profile *Profile) []Finding {
				svc, ok := productContains(profile, "apache httpd")
				if !ok || !strings.HasPrefix(svc.Version, "2.2") {
					return nil
				}
				return []Finding{{
					Title:       "End-of-life Apache httpd 2.2",
					Description: fmt.Sprintf("The device serves HTTP with Apache httpd %s. The 2.2 series stopped receiving security fixes in 2017.", svc.Version),
					Severity:    db.SeverityMedium,
					Port:        portRef(svc.Port),
					Service:     svc.Product,
					Solution:    "Upgrade to a maintained Apache httpd release.",
				}}
			},
		},
	}
}

// serviceName prefers the recorded service name, falling back to the
// conventional one for the port.
func serviceName(svc db.ServiceInfo, fallback string) string {
	if svc.Name != "" {
		return svc.Name
	}
	return fallback
}
