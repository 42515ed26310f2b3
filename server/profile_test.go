package tempo_test

import (
	"testing"

	Ms "github.com/maroda/tempo/server"
	Mt "github.com/maroda/tempo/types"
)

func TestNewProfileStore(t *testing.T) {
	ps := Ms.NewProfileStore()

	t.Run("All eight phases are defined", func(t *testing.T) {
		assertBool(t, ps.Complete(), true)
	})

	t.Run("Weights sum to one", func(t *testing.T) {
		sum := 0.0
		for _, w := range ps.Weights {
			sum += w
		}
		assertFloatNear(t, sum, 1.0, 1e-9)
	})

	t.Run("Version carries the curated tag", func(t *testing.T) {
		assertString(t, ps.Version, Ms.ProfilesVersion)
	})

	t.Run("Address bands carry the setup posture", func(t *testing.T) {
		band, ok := ps.Range(Mt.Address)[Mt.SpineAngle]
		assertBool(t, ok, true)
		assertFloatNear(t, band.Ideal, 45, 1e-9)
	})

	t.Run("Hand profile falls to the top and rises to impact", func(t *testing.T) {
		addr := ps.Profile(Mt.Address).Hands.AvgWristHeight
		top := ps.Profile(Mt.Top).Hands.AvgWristHeight
		impact := ps.Profile(Mt.Impact).Hands.AvgWristHeight
		if !(top < addr && top < impact) {
			t.Errorf("expected wrist-height minimum at the top, got addr %f top %f impact %f", addr, top, impact)
		}
	})

	t.Run("Out-of-range lookups are nil", func(t *testing.T) {
		if ps.Profile(Mt.Phase(99)) != nil {
			t.Errorf("expected nil profile for a bad phase")
		}
		if ps.Range(Mt.Phase(-1)) != nil {
			t.Errorf("expected nil range for a bad phase")
		}
	})
}

func TestLoadProfileFileName(t *testing.T) {
	t.Run("Overrides merge onto the defaults", func(t *testing.T) {
		profileFile, delProfile := createTempFile(t, `{
			"version": "test-override",
			"phases": {
				"impact": {
					"metrics": {"spine_angle": 33},
					"weight": 0.5,
					"ranges": {"spine_angle": [10, 40, 80]}
				}
			}
		}`)
		defer delProfile()

		ps, err := Ms.LoadProfileFileName(profileFile.Name())
		assertError(t, err, nil)
		assertString(t, ps.Version, "test-override")

		got, ok := ps.Profile(Mt.Impact).Metrics.Get(Mt.SpineAngle)
		assertBool(t, ok, true)
		assertFloatNear(t, got, 33, 1e-9)
		assertFloatNear(t, ps.Weights[Mt.Impact], 0.5, 1e-9)

		band := ps.Range(Mt.Impact)[Mt.SpineAngle]
		assertFloatNear(t, band.Ideal, 40, 1e-9)

		// Untouched phases keep their defaults
		assertFloatNear(t, ps.Weights[Mt.Address], 0.10, 1e-9)
	})

	t.Run("Unknown phase names error", func(t *testing.T) {
		profileFile, delProfile := createTempFile(t, `{
			"phases": {"warmup": {"weight": 0.5}}
		}`)
		defer delProfile()

		_, err := Ms.LoadProfileFileName(profileFile.Name())
		assertGotError(t, err)
	})

	t.Run("Unknown metric names error", func(t *testing.T) {
		profileFile, delProfile := createTempFile(t, `{
			"phases": {"impact": {"metrics": {"club_speed": 1}}}
		}`)
		defer delProfile()

		_, err := Ms.LoadProfileFileName(profileFile.Name())
		assertGotError(t, err)
	})

	t.Run("Empty files fail validation", func(t *testing.T) {
		profileFile, delProfile := createTempFile(t, ``)
		defer delProfile()

		_, err := Ms.LoadProfileFileName(profileFile.Name())
		assertGotError(t, err)
	})

	t.Run("Missing files error", func(t *testing.T) {
		_, err := Ms.LoadProfileFileName("/no/such/profile.json")
		assertGotError(t, err)
	})
}
