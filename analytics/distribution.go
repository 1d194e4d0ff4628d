package analytics

// DistributionBucket counts closed trades whose P/L falls in Range.
type DistributionBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// distributionRanges are fixed. A P/L of exactly 0 lands in "0 to 100".
var distributionRanges = [8]string{
	"<= -1000",
	"-1000 to -500",
	"-500 to -100",
	"-100 to 0",
	"0 to 100",
	"100 to 500",
	"500 to 1000",
	"> 1000",
}

func bucketIndex(pnl float64) int {
	switch {
	case pnl <= -1000:
		return 0
	case pnl <= -500:
		return 1
	case pnl <= -100:
		return 2
	case pnl < 0:
		return 3
	case pnl <= 100:
		return 4
	case pnl <= 500:
		return 5
	case pnl <= 1000:
		return 6
	default:
		return 7
	}
}

func pnlDistribution(recs []record) []DistributionBucket {
	out := make([]DistributionBucket, len(distributionRanges))
	for i, label := range distributionRanges {
		out[i].Range = label
	}
	for _, r := range recs {
		if r.realized {
			out[bucketIndex(r.pnl)].Count++
		}
	}
	return out
}
