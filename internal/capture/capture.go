// Package capture reads Ethernet frames with gopacket and turns them into
// observations for the inspector.
package capture

import (
	"context"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"macwatch/internal/errors"
	"macwatch/internal/hwaddr"
	"macwatch/internal/logging"
	"macwatch/internal/models"
)

// Start opens src and streams decoded observations to out until ctx is done
// or the source runs dry. out is closed when the reader exits.
func Start(ctx context.Context, src Source, out chan<- models.Observation, logger *logging.Logger) error {
	handle, err := src.open()
	if err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "start capture")
	}
	logger.Info("capture started", "source", src.String(), "link", handle.LinkType().String())

	go func() {
		defer close(out)
		defer handle.Close()

		packets := gopacket.NewPacketSource(handle, handle.LinkType()).Packets()
		var seen, skipped int64
		for {
			select {
			case <-ctx.Done():
				logger.Debug("capture stopped", "packets", seen, "skipped", skipped)
				return
			case pkt, ok := <-packets:
				if !ok {
					logger.Info("capture source exhausted", "packets", seen, "skipped", skipped)
					return
				}
				seen++
				obs, ok := Decode(pkt)
				if !ok {
					skipped++
					continue
				}
				select {
				case out <- obs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// Decode extracts an observation from pkt. It reports false for frames with
// no Ethernet layer.
func Decode(pkt gopacket.Packet) (models.Observation, bool) {
	var obs models.Observation

	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return obs, false
	}
	eth := ethLayer.(*layers.Ethernet)

	src, err := hwaddr.FromHardwareAddr(eth.SrcMAC)
	if err != nil {
		return obs, false
	}
	dst, err := hwaddr.FromHardwareAddr(eth.DstMAC)
	if err != nil {
		return obs, false
	}
	obs.SrcMAC = src
	obs.DstMAC = dst

	md := pkt.Metadata()
	obs.Timestamp = md.Timestamp
	if obs.Timestamp.IsZero() {
		obs.Timestamp = time.Now()
	}
	obs.Length = md.Length
	if obs.Length == 0 {
		obs.Length = len(pkt.Data())
	}

	obs.Protocol = eth.EthernetType.String()
	switch {
	case pkt.Layer(layers.LayerTypeIPv4) != nil:
		ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		obs.SrcIP = cloneIP(ip.SrcIP)
		obs.Protocol = "IPv4"
	case pkt.Layer(layers.LayerTypeIPv6) != nil:
		ip := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
		obs.SrcIP = cloneIP(ip.SrcIP)
		obs.Protocol = "IPv6"
	case pkt.Layer(layers.LayerTypeARP) != nil:
		arp := pkt.Layer(layers.LayerTypeARP).(*layers.ARP)
		if len(arp.SourceProtAddress) == net.IPv4len {
			obs.SrcIP = cloneIP(net.IP(arp.SourceProtAddress))
		}
		obs.Protocol = "ARP"
	}

	if l := pkt.Layer(layers.LayerTypeICMPv6); l != nil {
		icmp := l.(*layers.ICMPv6)
		obs.Protocol = "ICMPv6"
		obs.RouterAdvert = icmp.TypeCode.Type() == layers.ICMPv6TypeRouterAdvertisement
	}

	return obs, true
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}
