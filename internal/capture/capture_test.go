package capture

import (
	"context"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macwatch/internal/errors"
	"macwatch/internal/logging"
	"macwatch/internal/models"
)

var (
	hostMAC   = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	routerMAC = net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}
)

func build(t *testing.T, ls ...gopacket.SerializableLayer) gopacket.Packet {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
}

func TestDecodeIPv4(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: hostMAC, DstMAC: routerMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP,
		SrcIP: net.IPv4(192, 168, 1, 10), DstIP: net.IPv4(1, 1, 1, 1)}
	udp := &layers.UDP{SrcPort: 5353, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

	pkt := build(t, eth, ip, udp, gopacket.Payload([]byte("query")))
	obs, ok := Decode(pkt)
	require.True(t, ok)
	assert.Equal(t, "00:11:22:33:44:55", obs.SrcMAC.String())
	assert.Equal(t, "02:00:5e:10:00:01", obs.DstMAC.String())
	assert.Equal(t, "192.168.1.10", obs.SrcIP.String())
	assert.Equal(t, "IPv4", obs.Protocol)
	assert.Equal(t, len(pkt.Data()), obs.Length)
	assert.False(t, obs.Timestamp.IsZero())
	assert.False(t, obs.RouterAdvert)
}

func TestDecodeARP(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: hostMAC, DstMAC: net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(hostMAC),
		SourceProtAddress: []byte{10, 0, 0, 7},
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte{10, 0, 0, 1},
	}

	obs, ok := Decode(build(t, eth, arp))
	require.True(t, ok)
	assert.Equal(t, "ARP", obs.Protocol)
	assert.Equal(t, "10.0.0.7", obs.SrcIP.String())
	assert.True(t, obs.DstMAC.IsBroadcast())
}

func TestDecodeRouterAdvertisement(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: routerMAC, DstMAC: net.HardwareAddr{0x33, 0x33, 0, 0, 0, 1},
		EthernetType: layers.EthernetTypeIPv6}
	ip6 := &layers.IPv6{Version: 6, HopLimit: 255, NextHeader: layers.IPProtocolICMPv6,
		SrcIP: net.ParseIP("fe80::1"), DstIP: net.ParseIP("ff02::1")}
	icmp := &layers.ICMPv6{TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeRouterAdvertisement, 0)}
	require.NoError(t, icmp.SetNetworkLayerForChecksum(ip6))

	obs, ok := Decode(build(t, eth, ip6, icmp, gopacket.Payload(make([]byte, 12))))
	require.True(t, ok)
	assert.True(t, obs.RouterAdvert)
	assert.Equal(t, "ICMPv6", obs.Protocol)
	assert.Equal(t, "fe80::1", obs.SrcIP.String())
}

func TestDecodeRejectsNonEthernet(t *testing.T) {
	pkt := gopacket.NewPacket([]byte{1, 2, 3}, layers.LayerTypeIPv4, gopacket.Default)
	_, ok := Decode(pkt)
	assert.False(t, ok)
}

func TestStartMissingFile(t *testing.T) {
	out := make(chan models.Observation, 1)
	err := Start(context.Background(), Source{File: "/nonexistent/macwatch.pcap"}, out, logging.Discard())
	require.Error(t, err)
	assert.Equal(t, errors.KindUnavailable, errors.GetKind(err))
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "file:x.pcap", Source{File: "x.pcap"}.String())
	assert.Equal(t, "iface:eth0", Source{Interface: "eth0"}.String())
	assert.Equal(t, int32(65536), DefaultSource().SnapLen)
}
