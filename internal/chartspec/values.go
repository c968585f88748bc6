package chartspec

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Labels is a sequence of category labels.
type Labels []string

// Numbers is a numeric sequence. NaN and infinite values marshal as null
// and null unmarshals as NaN.
type Numbers []float64

// NumberSlice copies vs into a Numbers value.
func NumberSlice(vs []float64) Numbers {
	return append(Numbers(make([]float64, 0, len(vs))), vs...)
}

// MarshalJSON implements json.Marshaler.
func (n Numbers) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Numbers) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*n = nil
		return nil
	}
	out := make(Numbers, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*n = out
	return nil
}

// Valid reports how many values are neither NaN nor infinite.
func (n Numbers) Valid() int {
	count := 0
	for _, v := range n {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			count++
		}
	}
	return count
}

// Zeros returns n zero values.
func Zeros(n int) Numbers {
	return make(Numbers, n)
}

// FormatKoreanCount renders a head count with Korean myriad units, for
// example 51672400 becomes "5,167만 2,400명". Missing values render as "".
func FormatKoreanCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}

	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	if n == 0 {
		return "0명"
	}

	units := []struct {
		size   int64
		suffix string
	}{
		{size: 1_000_000_000_000, suffix: "조"},
		{size: 100_000_000, suffix: "억"},
		{size: 10_000, suffix: "만"},
	}

	var parts []string
	for _, u := range units {
		if q := n / u.size; q > 0 {
			parts = append(parts, groupThousands(q)+u.suffix)
			n %= u.size
		}
	}
	if n > 0 {
		parts = append(parts, groupThousands(n))
	}
	return sign + strings.Join(parts, " ") + "명"
}

// groupThousands formats a non-negative integer with comma separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
