package models

import (
	"net"
	"time"

	"macwatch/internal/hwaddr"
)

// Observation holds what the inspector needs from one captured frame.
type Observation struct {
	Timestamp time.Time
	SrcMAC    hwaddr.Addr
	DstMAC    hwaddr.Addr
	SrcIP     net.IP // IPv4/IPv6 source or ARP sender, nil if none
	Protocol  string
	Length    int

	// RouterAdvert is set for ICMPv6 router advertisements (type 134).
	RouterAdvert bool
}
