package tempo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	Mt "github.com/maroda/tempo/types"
)

// ProfilesVersion tags the curated reference tables baked in below.
// Superseded tunings are not merged in, this is the single source.
const ProfilesVersion = "2025.2"

// ProfileStore is the read-only lookup for reference profiles and
// tolerance bands. It is built once at process start and shared by
// every analysis run without locking, nothing mutates it afterwards.
type ProfileStore struct {
	Version  string
	Profiles [Mt.PhaseCount]*Mt.PhaseProfile
	Ranges   [Mt.PhaseCount]Mt.MetricRange
	Weights  [Mt.PhaseCount]float64
}

// Complete reports whether all eight phases carry a profile.
// An incomplete store routes segmentation to the heuristic path.
func (ps *ProfileStore) Complete() bool {
	if ps == nil {
		return false
	}
	for _, p := range ps.Profiles {
		if p == nil {
			return false
		}
	}
	return true
}

// Profile returns the reference profile for a phase, nil when undefined
func (ps *ProfileStore) Profile(p Mt.Phase) *Mt.PhaseProfile {
	if ps == nil || p < 0 || p >= Mt.PhaseCount {
		return nil
	}
	return ps.Profiles[p]
}

// Range returns the tolerance table for a phase, may be empty
func (ps *ProfileStore) Range(p Mt.Phase) Mt.MetricRange {
	if ps == nil || p < 0 || p >= Mt.PhaseCount {
		return nil
	}
	return ps.Ranges[p]
}

// NewProfileStore builds the store from the built-in curated tables
func NewProfileStore() *ProfileStore {
	ps := &ProfileStore{Version: ProfilesVersion}

	for phase := Mt.Phase(0); phase < Mt.PhaseCount; phase++ {
		prof := &Mt.PhaseProfile{Hands: defaultHands[phase]}
		for m, v := range defaultProfileMetrics[phase] {
			prof.Metrics.Set(m, v)
		}
		ps.Profiles[phase] = prof
		ps.Ranges[phase] = defaultRanges[phase]
		ps.Weights[phase] = defaultWeights[phase]
	}

	return ps
}

// defaultWeights sum to 1 across the eight phases,
// impact and the transition phases count for more
var defaultWeights = [Mt.PhaseCount]float64{
	0.10, // address
	0.10, // takeaway
	0.12, // backswing
	0.15, // top
	0.15, // downswing
	0.18, // impact
	0.10, // follow_through
	0.10, // finish
}

// defaultProfileMetrics is the reference metric vector per phase,
// calibrated from slow-motion reference footage
var defaultProfileMetrics = [Mt.PhaseCount]map[Mt.MetricID]float64{
	Mt.Address: {
		Mt.SpineAngle:     28,
		Mt.LeftKneeAngle:  168,
		Mt.RightKneeAngle: 168,
		Mt.StanceWidth:    0.24,
		Mt.HeadSway:       0.02,
		Mt.ShoulderTilt:   2,
	},
	Mt.Takeaway: {
		Mt.SpineAngle:            29,
		Mt.LeftArmAngle:          172,
		Mt.HeadSway:              0.03,
		Mt.HipShoulderSeparation: 8,
	},
	Mt.Backswing: {
		Mt.SpineAngle:            31,
		Mt.LeftArmAngle:          168,
		Mt.HipShoulderSeparation: 25,
		Mt.ShoulderTilt:          -28,
	},
	Mt.Top: {
		Mt.SpineAngle:            30,
		Mt.LeftArmAngle:          165,
		Mt.HipShoulderSeparation: 38,
		Mt.RightArmAngle:         88,
	},
	Mt.Downswing: {
		Mt.SpineAngle:            29,
		Mt.HipShoulderSeparation: 32,
		Mt.LeftArmAngle:          170,
		Mt.HeadSway:              0.03,
	},
	Mt.Impact: {
		Mt.SpineAngle:            28,
		Mt.LeftArmAngle:          176,
		Mt.HipShoulderSeparation: 33,
		Mt.HeadSway:              0.02,
		Mt.LeftKneeAngle:         170,
	},
	Mt.FollowThrough: {
		Mt.SpineAngle: 22,
		Mt.HeadSway:   0.05,
	},
	Mt.Finish: {
		Mt.SpineAngle: 12,
		Mt.HeadSway:   0.04,
	},
}

// defaultHands is the hand-position reference per phase.
// Wrist y falls toward the top of the swing (y grows downward)
// and rises again through impact, this shape is what makes the
// hand features so discriminative for alignment.
var defaultHands = [Mt.PhaseCount]Mt.HandProfile{
	Mt.Address:       {AvgWristHeight: 0.68, WristAboveShoulders: -0.33, WristLateralOffset: 0.00},
	Mt.Takeaway:      {AvgWristHeight: 0.55, WristAboveShoulders: -0.20, WristLateralOffset: 0.06},
	Mt.Backswing:     {AvgWristHeight: 0.38, WristAboveShoulders: -0.03, WristLateralOffset: 0.08},
	Mt.Top:           {AvgWristHeight: 0.20, WristAboveShoulders: 0.15, WristLateralOffset: 0.05},
	Mt.Downswing:     {AvgWristHeight: 0.42, WristAboveShoulders: -0.07, WristLateralOffset: 0.02},
	Mt.Impact:        {AvgWristHeight: 0.65, WristAboveShoulders: -0.30, WristLateralOffset: -0.02},
	Mt.FollowThrough: {AvgWristHeight: 0.52, WristAboveShoulders: -0.17, WristLateralOffset: -0.07},
	Mt.Finish:        {AvgWristHeight: 0.40, WristAboveShoulders: -0.05, WristLateralOffset: -0.08},
}

// defaultRanges are the tolerance bands per phase. Wide bands
// accommodate frame-to-frame jitter, body types, and camera angles:
// clean swings should land 85-100, rough ones 25-60.
var defaultRanges = [Mt.PhaseCount]Mt.MetricRange{
	Mt.Address: {
		Mt.SpineAngle:     {Min: 0, Ideal: 45, Max: 90},
		Mt.LeftKneeAngle:  {Min: 90, Ideal: 136, Max: 180},
		Mt.RightKneeAngle: {Min: 80, Ideal: 135, Max: 180},
		Mt.HeadSway:       {Min: 0.0, Ideal: 0.30, Max: 0.65},
		Mt.ShoulderTilt:   {Min: -45, Ideal: -5, Max: 40},
	},
	Mt.Takeaway: {
		Mt.SpineAngle:            {Min: 0, Ideal: 42, Max: 85},
		Mt.LeftArmAngle:          {Min: 110, Ideal: 175, Max: 180},
		Mt.HeadSway:              {Min: 0.0, Ideal: 0.30, Max: 0.60},
		Mt.HipShoulderSeparation: {Min: 0, Ideal: 10, Max: 50},
	},
	Mt.Backswing: {
		Mt.SpineAngle:            {Min: 0, Ideal: 42, Max: 85},
		Mt.LeftArmAngle:          {Min: 90, Ideal: 160, Max: 180},
		Mt.HipShoulderSeparation: {Min: 0, Ideal: 16, Max: 55},
		Mt.ShoulderTilt:          {Min: -65, Ideal: -20, Max: 25},
	},
	Mt.Top: {
		Mt.SpineAngle:            {Min: 0, Ideal: 45, Max: 90},
		Mt.LeftArmAngle:          {Min: 90, Ideal: 165, Max: 180},
		Mt.HipShoulderSeparation: {Min: 0, Ideal: 15, Max: 55},
		Mt.RightArmAngle:         {Min: 20, Ideal: 85, Max: 150},
	},
	Mt.Downswing: {
		Mt.SpineAngle:            {Min: 5, Ideal: 50, Max: 90},
		Mt.HipShoulderSeparation: {Min: 0, Ideal: 11, Max: 50},
		Mt.LeftArmAngle:          {Min: 80, Ideal: 165, Max: 180},
		Mt.HeadSway:              {Min: 0.0, Ideal: 0.32, Max: 0.65},
	},
	Mt.Impact: {
		Mt.SpineAngle:            {Min: 5, Ideal: 52, Max: 90},
		Mt.LeftArmAngle:          {Min: 80, Ideal: 150, Max: 180},
		Mt.HipShoulderSeparation: {Min: 0, Ideal: 8, Max: 45},
		Mt.HeadSway:              {Min: 0.0, Ideal: 0.30, Max: 0.65},
		Mt.LeftKneeAngle:         {Min: 85, Ideal: 134, Max: 180},
	},
	Mt.FollowThrough: {
		Mt.SpineAngle:   {Min: 0, Ideal: 40, Max: 85},
		Mt.LeftArmAngle: {Min: 20, Ideal: 100, Max: 180},
		Mt.HeadSway:     {Min: 0.0, Ideal: 0.28, Max: 0.60},
	},
	Mt.Finish: {
		Mt.SpineAngle:   {Min: 0, Ideal: 30, Max: 70},
		Mt.LeftArmAngle: {Min: 20, Ideal: 100, Max: 175},
		Mt.HeadSway:     {Min: 0.0, Ideal: 0.22, Max: 0.55},
	},
}

// profileFile is the on-disk override format, keyed by wire names
type profileFile struct {
	Version string                      `json:"version"`
	Phases  map[string]profileFileEntry `json:"phases"`
}

type profileFileEntry struct {
	Metrics map[string]float64    `json:"metrics"`
	Hands   *Mt.HandProfile       `json:"hands"`
	Ranges  map[string][3]float64 `json:"ranges"`
	Weight  *float64              `json:"weight"`
}

// LoadProfileFileName pulls a curated profile file off local disk and
// overlays it onto the built-in defaults. Validation is performed on
// the file before decoding.
func LoadProfileFileName(filename string) (*ProfileStore, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := validateLoad(file); err != nil {
		slog.Error("Profile validation failed", slog.Any("Error", err))
		return nil, err
	}

	var pf profileFile
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&pf); err != nil {
		slog.Error("Could not decode profile file", slog.Any("Error", err))
		return nil, fmt.Errorf("profile decode error: %w", err)
	}

	return mergeProfileFile(&pf)
}

func mergeProfileFile(pf *profileFile) (*ProfileStore, error) {
	ps := NewProfileStore()
	if pf.Version != "" {
		ps.Version = pf.Version
	}

	for name, entry := range pf.Phases {
		phase, ok := phaseByName(name)
		if !ok {
			return nil, errors.New("unknown phase in profile file: " + name)
		}

		if len(entry.Metrics) > 0 {
			prof := &Mt.PhaseProfile{Hands: ps.Profiles[phase].Hands}
			for mname, v := range entry.Metrics {
				m, ok := metricByName(mname)
				if !ok {
					return nil, errors.New("unknown metric in profile file: " + mname)
				}
				prof.Metrics.Set(m, v)
			}
			ps.Profiles[phase] = prof
		}
		if entry.Hands != nil {
			ps.Profiles[phase].Hands = *entry.Hands
		}
		if len(entry.Ranges) > 0 {
			ranges := make(Mt.MetricRange, len(entry.Ranges))
			for mname, band := range entry.Ranges {
				m, ok := metricByName(mname)
				if !ok {
					return nil, errors.New("unknown metric in profile file: " + mname)
				}
				ranges[m] = Mt.MetricBand{Min: band[0], Ideal: band[1], Max: band[2]}
			}
			ps.Ranges[phase] = ranges
		}
		if entry.Weight != nil {
			ps.Weights[phase] = *entry.Weight
		}
	}

	slog.Info("Loaded profile overrides",
		slog.String("version", ps.Version),
		slog.Int("phases", len(pf.Phases)))

	return ps, nil
}

func phaseByName(name string) (Mt.Phase, bool) {
	for p, n := range Mt.PhaseNames {
		if n == name {
			return Mt.Phase(p), true
		}
	}
	return 0, false
}

func metricByName(name string) (Mt.MetricID, bool) {
	for m, n := range Mt.MetricNames {
		if n == name {
			return Mt.MetricID(m), true
		}
	}
	return 0, false
}
