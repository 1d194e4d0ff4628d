package refresh

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rustyeddy/tradestats/analytics"
)

// Fingerprint hashes everything Compute reads, in order. Equal fingerprints
// mean an identical report, up to holding periods of still-open trades.
func Fingerprint(trades []analytics.Trade, balance float64) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 128)

	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(balance))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(trades)))
	d.Write(buf)

	for _, t := range trades {
		buf = buf[:0]
		buf = appendString(buf, t.ID)
		buf = appendString(buf, t.Instrument)
		buf = appendString(buf, string(t.Direction))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.EntryPrice))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.StopLoss))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.TakeProfit))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.EquityBefore))
		if t.PnL != nil {
			buf = append(buf, 1)
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(*t.PnL))
		} else {
			buf = append(buf, 0)
		}
		buf = appendTime(buf, t.EntryTime)
		if t.CloseTime != nil {
			buf = append(buf, 1)
			buf = appendTime(buf, *t.CloseTime)
		} else {
			buf = append(buf, 0)
		}
		d.Write(buf)
	}
	return d.Sum64()
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// appendTime includes the zone offset; hour and weekday buckets depend on it.
func appendTime(buf []byte, t time.Time) []byte {
	if t.IsZero() {
		return append(buf, 0)
	}
	_, offset := t.Zone()
	buf = append(buf, 1)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.UnixNano()))
	return binary.LittleEndian.AppendUint32(buf, uint32(int32(offset)))
}
