//go:build tinygo

package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"tinygo.org/x/drivers/netdev"
	"tinygo.org/x/drivers/netlink"

	"github.com/itohio/envnode/pkg/device"
)

// station adapts a netlink/netdev pair to device.Network. Begin connects in the
// background so the node can keep polling the console while associating.
type station struct {
	link netlink.Netlinker
	dev  netdev.Netdever

	mu       sync.Mutex
	ssid     string
	psk      string
	hostname string
	status   device.Status
	attempt  int
}

func newStation(link netlink.Netlinker, dev netdev.Netdever) *station {
	s := &station{link: link, dev: dev, status: device.StatusIdle}
	link.NetNotify(s.notify)
	return s
}

func (s *station) notify(e netlink.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e {
	case netlink.EventNetUp:
		s.status = device.StatusConnected
	case netlink.EventNetDown:
		if s.status == device.StatusConnected {
			s.status = device.StatusDisconnected
		}
	}
}

func (s *station) Connected() bool {
	return s.Status() == device.StatusConnected
}

func (s *station) Status() device.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *station) Begin(ssid, psk string) error {
	s.mu.Lock()
	wasUp := s.status == device.StatusConnected
	s.ssid, s.psk = ssid, psk
	s.status = device.StatusConnecting
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()

	if wasUp {
		s.link.NetDisconnect()
	}

	go s.connect(attempt, &netlink.ConnectParams{
		Ssid:           ssid,
		Passphrase:     psk,
		AuthType:       netlink.AuthTypeWPA2,
		ConnectTimeout: WIFI_CONNECT_TIMEOUT,
	})
	return nil
}

func (s *station) connect(attempt int, params *netlink.ConnectParams) {
	err := s.link.NetConnect(params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return
	}

	switch {
	case err == nil:
		s.status = device.StatusConnected
	case errors.Is(err, netlink.ErrAuthFailure):
		s.status = device.StatusWrongPassword
	case errors.Is(err, netlink.ErrMissingSSID):
		s.status = device.StatusNoSSID
	default:
		s.status = device.StatusConnectFailed
	}
}

func (s *station) SSID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ssid
}

func (s *station) PSK() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.psk
}

func (s *station) Hostname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostname
}

// SetHostname only records the name; netdev has no DHCP hostname option.
func (s *station) SetHostname(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostname = name
	return nil
}

func (s *station) LocalIP() string {
	if !s.Connected() {
		return ""
	}
	addr, err := s.dev.Addr()
	if err != nil || !addr.IsValid() {
		return ""
	}
	return addr.String()
}

// RSSI is not exposed by netlink.
func (s *station) RSSI() int {
	return 0
}

func (s *station) Diag(w io.Writer) {
	fmt.Fprintf(w, "Status: %s\r\n", s.Status())
	fmt.Fprintf(w, "SSID: %q\r\n", s.SSID())
	if mac, err := s.link.GetHardwareAddr(); err == nil {
		fmt.Fprintf(w, "MAC: %s\r\n", mac)
	}
	if ip := s.LocalIP(); ip != "" {
		fmt.Fprintf(w, "IP: %s\r\n", ip)
	}
}

var _ device.Network = (*station)(nil)
