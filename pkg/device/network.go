package device

import "fmt"

// Ensure brings the station identity in line with the given settings. It only touches
// what differs, since re-beginning an association drops a working link. It reports
// whether a new association was started.
func Ensure(n Network, ssid, psk, hostname string) (bool, error) {
	if n.Hostname() != hostname {
		if err := n.SetHostname(hostname); err != nil {
			return false, fmt.Errorf("failed to set hostname: %w", err)
		}
	}
	if n.SSID() == ssid && n.PSK() == psk {
		return false, nil
	}
	if err := n.Begin(ssid, psk); err != nil {
		return false, fmt.Errorf("failed to begin association with %q: %w", ssid, err)
	}
	return true, nil
}
