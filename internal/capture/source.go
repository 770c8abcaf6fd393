package capture

import (
	"fmt"

	"github.com/google/gopacket/pcap"
)

// Source says where frames come from: a live interface or a pcap file.
type Source struct {
	Interface string `yaml:"interface"`
	File      string `yaml:"file"`
	Filter    string `yaml:"filter"`
	Promisc   bool   `yaml:"promisc"`
	SnapLen   int32  `yaml:"snaplen"`
}

// DefaultSource captures full frames in promiscuous mode.
func DefaultSource() Source {
	return Source{
		Promisc: true,
		SnapLen: 65536,
	}
}

func (s Source) String() string {
	if s.File != "" {
		return "file:" + s.File
	}
	return "iface:" + s.Interface
}

func (s Source) open() (*pcap.Handle, error) {
	var (
		handle *pcap.Handle
		err    error
	)
	if s.File != "" {
		handle, err = pcap.OpenOffline(s.File)
	} else {
		snap := s.SnapLen
		if snap <= 0 {
			snap = 65536
		}
		handle, err = pcap.OpenLive(s.Interface, snap, s.Promisc, pcap.BlockForever)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", s, err)
	}

	if s.Filter != "" {
		if err := handle.SetBPFFilter(s.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("could not set BPF filter %q: %w", s.Filter, err)
		}
	}
	return handle, nil
}
