// Package parameter implements the pluggable value sources that feed
// placeholders in request templates: uniform/normal random numbers, file
// round-robin/random selection, and the inline random-string/selection
// variants carried over from the original implementation.
package parameter

import (
	"fmt"
	"strconv"

	"github.com/kunkun/tpsgen/internal/utils"
)

// Source produces one string value per call. Implementations must be
// safe for concurrent use by many workers.
type Source interface {
	Next() (string, error)
}

// UniformInt returns a uniformly distributed integer in [Min, Max] inclusive.
type UniformInt struct {
	Min, Max int
	rng      *utils.Random
}

// NewUniformInt fails if min > max, matching the construction-time check
// in the original RandomParameterSource.UniformIntegerSource.
func NewUniformInt(min, max int, rng *utils.Random) (*UniformInt, error) {
	if min > max {
		return nil, fmt.Errorf("uniform int source: min (%d) is greater than max (%d)", min, max)
	}
	return &UniformInt{Min: min, Max: max, rng: rng}, nil
}

func (u *UniformInt) Next() (string, error) {
	return strconv.Itoa(u.rng.IntRange(u.Min, u.Max)), nil
}

// TruncatedNormal draws from a Gaussian(Mean, StdDev) distribution,
// resampling until the value falls in [Min, Max). Output is formatted as
// an integer when both Mean and StdDev are whole numbers, otherwise to one
// decimal place, matching the original's formatting rule.
type TruncatedNormal struct {
	Mean, StdDev, Min, Max float64
	rng                    *utils.Random
	intFormat              bool
}

// NewTruncatedNormal fails if stddev <= 0 or min >= max.
func NewTruncatedNormal(mean, stddev, min, max float64, rng *utils.Random) (*TruncatedNormal, error) {
	if stddev <= 0 {
		return nil, fmt.Errorf("truncated normal source: stddev must be positive, got %v", stddev)
	}
	if min >= max {
		return nil, fmt.Errorf("truncated normal source: min (%v) >= max (%v)", min, max)
	}
	return &TruncatedNormal{
		Mean: mean, StdDev: stddev, Min: min, Max: max, rng: rng,
		intFormat: mean == float64(int64(mean)) && stddev == float64(int64(stddev)),
	}, nil
}

func (n *TruncatedNormal) Next() (string, error) {
	var v float64
	for {
		v = n.rng.NormalFloat64Range(n.Mean, n.StdDev)
		if v >= n.Min && v < n.Max {
			break
		}
	}
	if n.intFormat {
		return strconv.FormatInt(int64(v), 10), nil
	}
	return strconv.FormatFloat(v, 'f', 1, 64), nil
}

// RandomString returns a fixed-length alphanumeric string on every call,
// grounded on the teacher's utils.Random.String helper.
type RandomString struct {
	Length int
	rng    *utils.Random
}

func NewRandomString(length int, rng *utils.Random) *RandomString {
	return &RandomString{Length: length, rng: rng}
}

func (r *RandomString) Next() (string, error) {
	return r.rng.String(r.Length), nil
}

// RandomSelection picks uniformly from a fixed enumerated list of values,
// grounded on the teacher's utils.Random.PickString helper.
type RandomSelection struct {
	Values []string
	rng    *utils.Random
}

func NewRandomSelection(values []string, rng *utils.Random) (*RandomSelection, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("random selection source: values must be non-empty")
	}
	return &RandomSelection{Values: values, rng: rng}, nil
}

func (r *RandomSelection) Next() (string, error) {
	return r.rng.PickString(r.Values), nil
}
