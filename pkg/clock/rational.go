package clock

import (
	"fmt"
	"math"
	"math/big"
	"time"
)

// Rational is a frame rate of Num/Den frames per second.
type Rational struct {
	Num int64
	Den int64
}

// DefaultFrameRate is used when no scene is attached.
var DefaultFrameRate = Rational{Num: 60, Den: 1}

var second = big.NewInt(int64(time.Second))

func (r Rational) Valid() bool    { return r.Num > 0 && r.Den > 0 }
func (r Rational) Float() float64 { return float64(r.Num) / float64(r.Den) }
func (r Rational) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// FramesIn returns the number of whole frames that fit into d,
// floor(d * Num / Den). Negative durations count as zero.
func (r Rational) FramesIn(d time.Duration) int64 { return r.frames(d, false) }

// FramesCeil returns ceil(d * Num / Den).
func (r Rational) FramesCeil(d time.Duration) int64 { return r.frames(d, true) }

func (r Rational) frames(d time.Duration, ceil bool) int64 {
	if d <= 0 || !r.Valid() {
		return 0
	}
	num := new(big.Int).Mul(big.NewInt(int64(d)), big.NewInt(r.Num))
	den := new(big.Int).Mul(big.NewInt(r.Den), second)
	return div(num, den, ceil)
}

// TimeOf returns the presentation time of the frame i.
// The value is rounded up to the nanosecond, so FramesIn(TimeOf(i)) == i.
func (r Rational) TimeOf(i int64) time.Duration {
	if i <= 0 || !r.Valid() {
		return 0
	}
	num := new(big.Int).Mul(big.NewInt(i), big.NewInt(r.Den))
	num.Mul(num, second)
	return time.Duration(div(num, big.NewInt(r.Num), true))
}

// Boundary rounds t up to the closest frame boundary at the rate r.
func (r Rational) Boundary(t time.Duration) time.Duration { return r.TimeOf(r.FramesCeil(t)) }

func div(a, b *big.Int, ceil bool) int64 {
	q, m := new(big.Int).QuoRem(a, b, new(big.Int))
	if ceil && m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return math.MaxInt64
	}
	return q.Int64()
}
