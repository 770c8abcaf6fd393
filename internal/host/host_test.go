package host

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macwatch/internal/errors"
	"macwatch/internal/hwaddr"
)

func TestArenaAllocCopiesTemplate(t *testing.T) {
	a := NewArena(0)
	tmpl := NewTemplate(hwaddr.MustParse("00:11:22:33:44:55"), time.Unix(100, 0))
	tmpl.AddIP(net.ParseIP("192.168.1.10"))

	rec, err := a.Alloc(tmpl)
	require.NoError(t, err)
	assert.NotSame(t, tmpl, rec)
	assert.Equal(t, tmpl.MAC, rec.MAC)
	assert.Equal(t, tmpl.ID, rec.ID)

	tmpl.IPs[0][0] = 10
	assert.Equal(t, "192.168.1.10", rec.IPs[0].String())
	assert.Equal(t, 1, a.Live())
}

func TestArenaReleaseExactlyOnce(t *testing.T) {
	a := NewArena(0)
	rec, err := a.Alloc(NewTemplate(hwaddr.MustParse("00:11:22:33:44:55"), time.Now()))
	require.NoError(t, err)

	a.Release(rec)
	a.Release(rec)
	assert.Equal(t, int64(1), a.Allocated())
	assert.Equal(t, int64(1), a.Released())
	assert.Equal(t, int64(1), a.DoubleReleases())
	assert.Equal(t, 0, a.Live())
}

func TestArenaRejectsForeignRecord(t *testing.T) {
	a, b := NewArena(0), NewArena(0)
	rec, err := a.Alloc(NewTemplate(hwaddr.MustParse("00:11:22:33:44:55"), time.Now()))
	require.NoError(t, err)

	b.Release(rec)
	assert.Equal(t, int64(1), b.DoubleReleases())
	assert.Equal(t, 1, a.Live())
}

func TestArenaLimit(t *testing.T) {
	a := NewArena(2)
	for i := 0; i < 2; i++ {
		_, err := a.Alloc(NewTemplate(hwaddr.Addr{0, 0, 0, 0, 0, byte(i + 1)}, time.Now()))
		require.NoError(t, err)
	}

	_, err := a.Alloc(NewTemplate(hwaddr.Addr{0, 0, 0, 0, 0, 9}, time.Now()))
	assert.Equal(t, errors.KindNoMemory, errors.GetKind(err))
	assert.Equal(t, 2, errors.GetAttributes(err)["limit"])

	_, err = a.Alloc(nil)
	assert.Equal(t, errors.KindInvalidArgument, errors.GetKind(err))
}

func TestRecordTouchAndIPs(t *testing.T) {
	start := time.Unix(100, 0)
	r := NewTemplate(hwaddr.MustParse("00:11:22:33:44:55"), start)
	r.Touch(start.Add(time.Second), 60)
	r.Touch(start, 40)

	assert.Equal(t, int64(2), r.Packets)
	assert.Equal(t, int64(100), r.Bytes)
	assert.Equal(t, start.Add(time.Second), r.LastSeen)

	assert.True(t, r.AddIP(net.ParseIP("fe80::1")))
	assert.False(t, r.AddIP(net.ParseIP("fe80::1")))
	assert.False(t, r.AddIP(net.IPv4zero))
	for i := 0; i < MaxIPs+2; i++ {
		r.AddIP(net.IPv4(10, 0, 0, byte(i)))
	}
	assert.Len(t, r.IPs, MaxIPs)
	assert.Equal(t, "10.0.0.9", r.IPStrings()[MaxIPs-1])
}
